package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/storage"
	"beaconcms.org/internal/validate"
)

const multipartMemory = 8 << 20

func (a *API) listMedia(w http.ResponseWriter, r *http.Request) {
	items, p, err := a.cms.ListMedia(r.Context(), principal(r), cms.MediaFilter{
		MimePrefix: r.URL.Query().Get("type"),
		Paging:     paging(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) getMedia(w http.ResponseWriter, r *http.Request) {
	m, err := a.cms.GetMedia(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": m})
}

// uploadMedia accepts a multipart form with a "file" part and an optional "altText" field.
func (a *API) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusBadRequest, "File too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "Expected multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
			contentType = byExt
		}
	}
	m, err := a.cms.UploadMedia(r.Context(), principal(r), cms.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
		AltText:     validate.OptionalString(r.FormValue("altText")),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, envelope{"id": m.ID, "data": m})
}

func (a *API) updateMedia(w http.ResponseWriter, r *http.Request) {
	var in cms.MediaPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	m, err := a.cms.UpdateMedia(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": m})
}

func (a *API) deleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteMedia(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// serveMedia streams a stored object or redirects to the bucket's presigned URL.
func (a *API) serveMedia(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	url, body, err := a.cms.OpenMedia(r.Context(), key)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", storage.TypeForKey(key))
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.Copy(w, body)
}
