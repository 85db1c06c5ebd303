package httpapi

import (
	"net/http"

	"beaconcms.org/internal/auth"
)

// listRoles returns the fixed role matrix and the permission catalog for the user editor.
func (a *API) listRoles(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(principal(r), auth.PermUsersView); err != nil {
		handleError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"data":        auth.Roles(),
		"permissions": auth.Catalog,
	})
}
