package httpapi

import (
	"net/http"

	"beaconcms.org/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	token, sess, err := a.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.setSessionCookie(w, token, sess.ExpiresAt)
	respond(w, http.StatusOK, envelope{"user": sess.User, "expiresAt": sess.ExpiresAt})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(a.opts.CookieName); err == nil && c.Value != "" {
		if err := a.sessions.Logout(r.Context(), c.Value); err != nil {
			handleError(w, r, err)
			return
		}
	}
	a.clearSessionCookie(w)
	respond(w, http.StatusOK, nil)
}

// handleSession reports the current session; no session is not an error.
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _, err := a.resolve(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]*auth.Session{"session": sess})
}
