package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the web application. It owns the routes, the parsed templates and
// the middleware; nothing is kept in package globals.
type Server struct {
	http.Server

	cfg          *config.Config
	auth         *services.AuthService
	ledger       *services.LedgerService
	db           Pinger
	templates    map[string]*template.Template
	logger       *log.Logger
	secret       []byte
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and builds the handler chain.
func NewServer(cfg *config.Config, authSvc *services.AuthService, ledger *services.LedgerService, db Pinger, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.NewDefault()
	}
	templates, err := parseTemplates(appweb.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		auth:      authSvc,
		ledger:    ledger,
		db:        db,
		templates: templates,
		logger:    logger.WithComponent(log.ComponentHTTP),
		secret:    []byte(cfg.SecretKey),
		detector:  security.NewDetector(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			Requests: cfg.LoginRatePerMinute,
			Period:   time.Minute,
		}, logger),
	}

	headers := security.DefaultHeadersConfig()
	headers.ForceHSTS = cfg.CookieSecure

	var handler http.Handler = s.routes()
	handler = s.withSession(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = trace.NewMiddleware(logger, s.detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	limit := s.limiter.Middleware(s.detector.ExtractClientIP)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /register", s.guestOnly(http.HandlerFunc(s.handleRegisterPage)))
	mux.Handle("POST /register", limit(s.guestOnly(http.HandlerFunc(s.handleRegister))))
	mux.Handle("GET /login", s.guestOnly(http.HandlerFunc(s.handleLoginPage)))
	mux.Handle("POST /login", limit(s.guestOnly(http.HandlerFunc(s.handleLogin))))
	mux.Handle("GET /logout", s.requireAuth(s.handleLogout))

	mux.Handle("GET /dashboard", s.requireAuth(s.handleDashboard))
	mux.Handle("GET /transactions", s.requireAuth(s.handleTransactions))
	mux.Handle("GET /categories", s.requireAuth(s.handleCategories))

	for _, e := range []entryRoutes{s.incomeRoutes(), s.expenseRoutes()} {
		prefix := "/" + string(e.kind)
		mux.Handle("GET "+prefix+"/add", s.requireAuth(s.handleEntryNew(e)))
		mux.Handle("POST "+prefix+"/add", s.requireAuth(s.handleEntryCreate(e)))
		mux.Handle("GET "+prefix+"/{id}/edit", s.requireAuth(s.handleEntryEdit(e)))
		mux.Handle("POST "+prefix+"/{id}/edit", s.requireAuth(s.handleEntryUpdate(e)))
		mux.Handle("POST "+prefix+"/{id}/delete", s.requireAuth(s.handleEntryDelete(e)))
	}

	mux.Handle("GET /category/add", s.requireAuth(s.handleCategoryNew))
	mux.Handle("POST /category/add", s.requireAuth(s.handleCategoryCreate))
	mux.Handle("GET /category/{id}/edit", s.requireAuth(s.handleCategoryEdit))
	mux.Handle("POST /category/{id}/edit", s.requireAuth(s.handleCategoryUpdate))
	mux.Handle("POST /category/{id}/delete", s.requireAuth(s.handleCategoryDelete))

	return mux
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Close releases background resources without serving; used by tests.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", &page{Title: "Welcome"})
}
