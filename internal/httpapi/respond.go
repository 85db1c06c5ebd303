package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/obs"
)

const (
	msgUnauthorized = "Unauthorized"
	msgForbidden    = "Forbidden"
	msgInternal     = "Internal server error"
	msgRateLimited  = "Too many requests. Please try again later."
)

// envelope is a success body; respond adds "success": true.
type envelope map[string]any

func respond(w http.ResponseWriter, code int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// handleError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *cms.Error
	switch {
	case errors.As(err, &ce):
		writeError(w, r, statusFor(ce.Kind), ce.Msg)
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, msgForbidden)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, cms.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, cms.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, cms.ErrConflict):
		writeError(w, r, http.StatusConflict, "Resource already exists")
	default:
		obs.Logger().Error("request failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, msgInternal)
	}
}

func statusFor(kind error) int {
	switch kind {
	case cms.ErrInvalidInput:
		return http.StatusBadRequest
	case cms.ErrNotFound:
		return http.StatusNotFound
	case cms.ErrConflict:
		return http.StatusConflict
	case auth.ErrForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

var errBadJSON = &cms.Error{Kind: cms.ErrInvalidInput, Msg: "Invalid JSON body"}

// decodeJSON reads exactly one JSON value. Unknown fields are ignored the way the
// admin forms expect.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &cms.Error{Kind: cms.ErrInvalidInput, Msg: "Request body too large"}
		case errors.Is(err, io.EOF):
			return &cms.Error{Kind: cms.ErrInvalidInput, Msg: "Request body is required"}
		}
		return errBadJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errBadJSON
	}
	return nil
}

// paging reads page and limit from the query string. Bad values fall back to the defaults.
func paging(r *http.Request) cms.Paging {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return cms.Paging{Page: page, Limit: limit}
}
