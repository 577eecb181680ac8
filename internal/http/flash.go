package http

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/log"
)

const flashCookie = "flash"

type flashKind string

const (
	flashSuccess flashKind = "success"
	flashError   flashKind = "error"
	flashInfo    flashKind = "info"
)

type flashMessage struct {
	Kind flashKind `json:"k"`
	Text string    `json:"t"`
}

// setFlash stores a message for the next page the browser renders. The
// cookie is signed so a client cannot inject markup-bearing messages.
func (s *Server) setFlash(w http.ResponseWriter, kind flashKind, text string) {
	raw, err := json.Marshal([]flashMessage{{Kind: kind, Text: text}})
	if err != nil {
		return
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    payload + "." + s.signFlash(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the pending messages and expires the cookie.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []flashMessage {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(s.signFlash(payload))) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Discarding flash cookie with bad signature")
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var msgs []flashMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}

func (s *Server) signFlash(payload string) string {
	return base64.RawURLEncoding.EncodeToString(auth.Sign(s.secret, "flash:"+payload))
}
