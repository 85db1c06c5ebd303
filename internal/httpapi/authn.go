package httpapi

import (
	"net/http"
	"time"

	"beaconcms.org/internal/auth"
)

// withSession resolves the session cookie and rejects the request with 401 when there
// is no live session. Permission checks happen in the service.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		sess, token, err := a.resolve(r)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if sess == nil {
			writeError(w, r, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		ctx := auth.ContextWithPrincipal(r.Context(), sess.Principal())
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) resolve(r *http.Request) (*auth.Session, string, error) {
	c, err := r.Cookie(a.opts.CookieName)
	if err != nil || c.Value == "" {
		return nil, "", nil
	}
	sess, err := a.sessions.Resolve(r.Context(), c.Value)
	return sess, c.Value, err
}

// principal is the signed-in user attached by withSession. The zero value fails
// every permission check with 401.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func (a *API) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
