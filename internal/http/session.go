package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	sessionCookie = "session"
	csrfField     = "csrf_token"
)

type contextKey string

const userContextKey contextKey = "current_user"

// currentSession is what withSession stores for an authenticated request.
type currentSession struct {
	user  core.User
	token string
}

func sessionFrom(ctx context.Context) (currentSession, bool) {
	cs, ok := ctx.Value(userContextKey).(currentSession)
	return cs, ok
}

// authedHandler is a handler that runs only for a logged-in user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user core.User)

// withSession resolves the session cookie to a user. Unknown and expired
// tokens clear the cookie and leave the request anonymous.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, _, err := s.auth.Authenticate(r.Context(), c.Value)
		switch {
		case err == nil:
			ctx := context.WithValue(r.Context(), userContextKey, currentSession{user: user, token: c.Value})
			logger := log.FromContext(ctx).With(log.FieldUserID, user.ID)
			next.ServeHTTP(w, r.WithContext(log.NewContext(ctx, logger)))
		case errors.Is(err, core.ErrSessionExpired):
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
		default:
			s.fail(w, r, err)
		}
	})
}

// requireAuth sends anonymous visitors to the login page and checks the
// CSRF token on every state-changing request.
func (s *Server) requireAuth(h authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs, ok := sessionFrom(r.Context())
		if !ok {
			s.setFlash(w, flashInfo, "Please log in to access this page.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if r.Method == http.MethodPost {
			if !s.parseForm(w, r) {
				return
			}
			if !auth.ValidCSRF(s.secret, cs.token, r.PostForm.Get(csrfField)) {
				log.FromContext(r.Context()).WarnContext(r.Context(), "CSRF token mismatch",
					log.FieldPath, r.URL.Path)
				s.renderError(w, r, http.StatusForbidden)
				return
			}
		}

		h(w, r, cs.user)
	})
}

// guestOnly sends logged-in users to their dashboard.
func (s *Server) guestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookie issues the cookie for a new session. Without remember-me
// it is a browser-session cookie; the server-side expiry applies either way.
func (s *Server) setSessionCookie(w http.ResponseWriter, sess core.Session) {
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.Remember {
		c.Expires = sess.ExpiresAt
		c.MaxAge = int(time.Until(sess.ExpiresAt).Seconds())
	}
	http.SetCookie(w, c)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) csrfToken(r *http.Request) string {
	if cs, ok := sessionFrom(r.Context()); ok {
		return auth.CSRFToken(s.secret, cs.token)
	}
	return ""
}
