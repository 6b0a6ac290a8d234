package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"acessorios/internal/app"
	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/metrics"
	"acessorios/internal/middleware/security"
	"acessorios/internal/middleware/trace"
	appweb "acessorios/web"
)

// Server is the dashboard: a full page plus the HTMX partials it swaps in.
type Server struct {
	http.Server

	state     *app.State
	templates *template.Template
	logger    *applog.Logger
	now       func() time.Time
}

var templateFuncs = template.FuncMap{
	"brl": core.FormatCurrency,
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, state *app.State, logger *applog.Logger) (*Server, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		state:     state,
		templates: t,
		logger:    logger,
		now:       time.Now,
	}

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	// UI partials
	mux.HandleFunc("GET /ui/records", s.handleRecords)
	mux.HandleFunc("GET /ui/form", s.handleForm)
	mux.HandleFunc("GET /ui/form/{id}", s.handleEditForm)
	mux.HandleFunc("GET /ui/preview", s.handlePreview)

	mux.HandleFunc("POST /records", s.handleSubmit)
	mux.HandleFunc("DELETE /records/{id}", s.handleDelete)
	mux.HandleFunc("GET /export/{format}", s.handleExport)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = metrics.Middleware(handler)
	handler = trace.NewMiddleware(logger).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the record snapshot has loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.state.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("records not loaded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// renderString executes a named template into memory so a failure never
// produces a half-written page.
func (s *Server) renderString(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// render writes a template with the given builder's triggers and status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	html, err := s.renderString(name, data)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
		InternalServerError("Erro ao renderizar a página").Write(w)
		return
	}
	b.BodyHTML(html).Write(w)
}
