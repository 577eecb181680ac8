package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig holds the response headers applied to every page.
type HeadersConfig struct {
	CSP string

	// HSTS is only sent over TLS, or when ForceHSTS is set because TLS
	// terminates at a proxy in front of the app.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ForceHSTS             bool

	FrameOptions        string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// Pages render per-user ledgers and must not be stored by shared caches.
	CacheControl string
}

// cspDirectives is the page policy: everything from our origin, forms only
// posting back to us, no framing.
var cspDirectives = []string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self'",
	"img-src 'self' data:",
	"font-src 'self'",
	"object-src 'none'",
	"frame-ancestors 'none'",
	"base-uri 'self'",
	"form-action 'self'",
}

// DefaultHeadersConfig returns the production header set.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   strings.Join(cspDirectives, "; "),
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ReferrerPolicy:        "same-origin",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:     "same-origin",
		CrossOriginResource:   "same-origin",
		CacheControl:          "no-store",
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config HeadersConfig
	hsts   string
}

// NewHeadersMiddleware creates a new security headers middleware
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	h := &HeadersMiddleware{config: config}
	if config.HSTSMaxAge > 0 {
		h.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
	}
	return h
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.apply(w.Header(), r.TLS != nil)
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) apply(headers http.Header, tls bool) {
	headers.Set("X-Content-Type-Options", "nosniff")
	set(headers, "X-Frame-Options", h.config.FrameOptions)
	set(headers, "Content-Security-Policy", h.config.CSP)
	set(headers, "Referrer-Policy", h.config.ReferrerPolicy)
	set(headers, "Permissions-Policy", h.config.PermissionsPolicy)
	set(headers, "Cross-Origin-Opener-Policy", h.config.CrossOriginOpener)
	set(headers, "Cross-Origin-Resource-Policy", h.config.CrossOriginResource)
	set(headers, "Cache-Control", h.config.CacheControl)
	if h.hsts != "" && (tls || h.config.ForceHSTS) {
		headers.Set("Strict-Transport-Security", h.hsts)
	}
}

func set(headers http.Header, key, value string) {
	if value != "" {
		headers.Set(key, value)
	}
}

// StaticAssetMiddleware replaces the page cache policy for embedded assets.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := "no-cache"
	if maxAge > 0 {
		value = fmt.Sprintf("public, max-age=%d", maxAge)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
