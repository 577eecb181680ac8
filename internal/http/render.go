package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	layoutTemplate = "templates/layout.html"
	maxFormBytes   = 64 << 10
)

// page is the data every template receives. Views use the fields they need.
type page struct {
	Title     string
	User      *core.User
	CSRFToken string
	Flashes   []flashMessage

	Form         any
	Errors       map[string]string
	Action       string
	DeleteAction string
	Editing      bool
	Kind         core.Kind
	Choices      []core.Category

	Dashboard    core.Dashboard
	Transactions []core.Transaction
	Categories   []core.Category

	Status  int
	Message string
}

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.String() },
	"date":  func(d core.Date) string { return d.String() },
	"selected": func(current string, id int64) bool {
		return current == strconv.FormatInt(id, 10)
	},
}

// parseTemplates builds one template set per page so each page can define
// its own "content" block inside the shared layout.
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		if p == layoutTemplate {
			continue
		}
		name := path.Base(p)
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, layoutTemplate, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p *page) {
	logger := log.FromContext(r.Context())

	t, ok := s.templates[name]
	if !ok {
		logger.ErrorContext(r.Context(), "Template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cs, ok := sessionFrom(r.Context()); ok {
		user := cs.user
		p.User = &user
		p.CSRFToken = s.csrfToken(r)
	}
	p.Flashes = s.popFlashes(w, r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var errorMessages = map[int]string{
	http.StatusBadRequest:          "The request could not be understood.",
	http.StatusForbidden:           "You do not have permission to access this resource.",
	http.StatusNotFound:            "The page you are looking for does not exist.",
	http.StatusInternalServerError: "Something went wrong on our side. Please try again later.",
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	s.render(w, r, status, "error.html", &page{
		Title:   http.StatusText(status),
		Status:  status,
		Message: errorMessages[status],
	})
}

// fail maps a use-case error to its response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound)
	case errors.Is(err, core.ErrForbidden):
		log.FromContext(ctx).WarnContext(ctx, "Access to another user's data denied", log.FieldPath, r.URL.Path)
		s.renderError(w, r, http.StatusForbidden)
	case errors.Is(err, core.ErrInvalidCredentials):
		s.setFlash(w, flashError, core.ErrInvalidCredentials.Error())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, core.ErrCategoryInUse):
		s.setFlash(w, flashError, "This category is used by incomes or expenses and cannot be deleted or change type.")
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
	case errors.Is(err, context.Canceled):
		log.FromContext(ctx).DebugContext(ctx, "Request cancelled by client", log.FieldPath, r.URL.Path)
	default:
		fields := log.NewFields().WithErrorType(errorType(err))
		fields[log.FieldPath] = r.URL.Path
		log.NewStructuredLogger(log.FromContext(ctx)).
			LogError(ctx, "Request failed", err, log.ComponentHTTP, r.Pattern, fields)
		s.renderError(w, r, http.StatusInternalServerError)
	}
}

func errorType(err error) string {
	var se *core.StorageError
	if errors.As(err, &se) {
		return log.ErrorTypeDatabase
	}
	return log.ErrorTypeInternal
}

// parseForm reads a bounded form body. It renders 400 and returns false when
// the body cannot be parsed.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", log.FieldError, err)
		s.renderError(w, r, http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
