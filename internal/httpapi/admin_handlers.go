package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/cms"
)

func listed[T any](w http.ResponseWriter, items []T, p cms.Pagination) {
	if items == nil {
		items = []T{}
	}
	respond(w, http.StatusOK, envelope{"data": items, "pagination": p})
}

func created(w http.ResponseWriter, id string) {
	respond(w, http.StatusCreated, envelope{"id": id})
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.cms.Stats(r.Context(), principal(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": stats})
}

func (a *API) auditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := paging(r)
	page, err := a.cms.AuditLogs(r.Context(), principal(r), audit.Filter{
		EntityType: q.Get("entityType"),
		Action:     audit.Action(q.Get("action")),
		UserID:     q.Get("userId"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"data": page.Items,
		"pagination": cms.Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// Leads

func (a *API) listLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, p, err := a.cms.ListLeads(r.Context(), principal(r), cms.LeadFilter{
		Status:     q.Get("status"),
		AssignedTo: q.Get("assignedTo"),
		Search:     q.Get("search"),
		Paging:     paging(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := a.cms.GetLead(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": lead})
}

func (a *API) createLead(w http.ResponseWriter, r *http.Request) {
	var in cms.LeadInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.CreateLead(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created(w, id)
}

func (a *API) updateLead(w http.ResponseWriter, r *http.Request) {
	var in cms.LeadPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	lead, err := a.cms.UpdateLead(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": lead})
}

func (a *API) deleteLead(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteLead(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// Blog

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, p, err := a.cms.ListPosts(r.Context(), principal(r), cms.PostFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Paging:   paging(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.cms.GetPost(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": post})
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	var in cms.PostInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.CreatePost(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created(w, id)
}

func (a *API) updatePost(w http.ResponseWriter, r *http.Request) {
	var in cms.PostPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	post, err := a.cms.UpdatePost(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": post})
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeletePost(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// Jobs

func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, p, err := a.cms.ListJobs(r.Context(), principal(r), cms.JobFilter{
		Status:     q.Get("status"),
		Department: q.Get("department"),
		Paging:     paging(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.cms.GetJob(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": job})
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	var in cms.JobInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.CreateJob(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created(w, id)
}

func (a *API) updateJob(w http.ResponseWriter, r *http.Request) {
	var in cms.JobPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	job, err := a.cms.UpdateJob(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": job})
}

func (a *API) deleteJob(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteJob(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// Applications

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, p, err := a.cms.ListApplications(r.Context(), principal(r), cms.ApplicationFilter{
		JobID:  q.Get("jobId"),
		Status: q.Get("status"),
		Paging: paging(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := a.cms.GetApplication(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": app})
}

func (a *API) updateApplication(w http.ResponseWriter, r *http.Request) {
	var in cms.ApplicationPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	app, err := a.cms.UpdateApplication(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": app})
}

func (a *API) deleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteApplication(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// Users

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	items, p, err := a.cms.ListUsers(r.Context(), principal(r), cms.UserFilter{
		Role:   r.URL.Query().Get("role"),
		Paging: paging(r),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	listed(w, items, p)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.cms.GetUser(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": user})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var in cms.UserInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.CreateUser(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created(w, id)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	var in cms.UserPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	user, err := a.cms.UpdateUser(r.Context(), principal(r), mux.Vars(r)["id"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": user})
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteUser(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := a.cms.Profile(r.Context(), principal(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": user})
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in cms.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	user, err := a.cms.UpdateProfile(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": user})
}

// Settings

func (a *API) listSettings(w http.ResponseWriter, r *http.Request) {
	items, err := a.cms.ListSettings(r.Context(), principal(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": items})
}

func (a *API) getSetting(w http.ResponseWriter, r *http.Request) {
	s, err := a.cms.GetSetting(r.Context(), principal(r), mux.Vars(r)["key"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": s})
}

func (a *API) createSetting(w http.ResponseWriter, r *http.Request) {
	var in cms.SettingInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, err := a.cms.CreateSetting(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	created(w, id)
}

func (a *API) updateSetting(w http.ResponseWriter, r *http.Request) {
	var in cms.SettingPatch
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	s, err := a.cms.UpdateSetting(r.Context(), principal(r), mux.Vars(r)["key"], in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": s})
}

func (a *API) deleteSetting(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteSetting(r.Context(), principal(r), mux.Vars(r)["key"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// Content

func (a *API) listContent(w http.ResponseWriter, r *http.Request) {
	items, err := a.cms.ListContent(r.Context(), principal(r), r.URL.Query().Get("page"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": items})
}

func (a *API) getContent(w http.ResponseWriter, r *http.Request) {
	c, err := a.cms.GetContent(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{"data": c})
}

// upsertContent answers 201 when the section is new and 200 when it replaced one.
func (a *API) upsertContent(w http.ResponseWriter, r *http.Request) {
	var in cms.ContentInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	id, isNew, err := a.cms.UpsertContent(r.Context(), principal(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	code := http.StatusOK
	if isNew {
		code = http.StatusCreated
	}
	respond(w, code, envelope{"id": id, "created": isNew})
}

func (a *API) deleteContent(w http.ResponseWriter, r *http.Request) {
	if err := a.cms.DeleteContent(r.Context(), principal(r), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
