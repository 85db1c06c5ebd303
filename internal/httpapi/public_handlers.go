package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/obs"
)

func (a *API) publicPosts(w http.ResponseWriter, r *http.Request) {
	items, p, err := a.cms.PublishedPosts(r.Context(), r.URL.Query().Get("category"), paging(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) publicPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.cms.PublishedPost(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": post})
}

func (a *API) publicJobs(w http.ResponseWriter, r *http.Request) {
	items, p, err := a.cms.PublishedJobs(r.Context(), r.URL.Query().Get("department"), paging(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) publicJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.cms.PublishedJob(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": job})
}

func (a *API) publicApply(w http.ResponseWriter, r *http.Request) {
	var in cms.ApplicationInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.SubmitApplication(r.Context(), mux.Vars(r)["slug"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created(w, id)
}

// publicContact is throttled per client IP before the body is read.
func (a *API) publicContact(w http.ResponseWriter, r *http.Request) {
	if !a.contact.Allow(r.Context(), "contact:"+clientIP(r)) {
		obs.RateLimited("contact")
		writeError(w, r, http.StatusTooManyRequests, msgRateLimited)
		return
	}
	var in cms.ContactInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.SubmitContact(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, envelope{"id": id, "message": "Thank you for your message. We'll be in touch soon."})
}

func (a *API) publicSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.cms.PublicSettings(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": settings})
}

func (a *API) publicContent(w http.ResponseWriter, r *http.Request) {
	sections, err := a.cms.PageContent(r.Context(), mux.Vars(r)["page"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": sections})
}
