// Package storeapi serves the /usuarios record collection over HTTP. It is
// the reference implementation of the store the dashboard talks to.
package storeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/metrics"
	"acessorios/internal/middleware/trace"
	"acessorios/internal/ports"
	"acessorios/internal/services"
)

const maxBodyBytes = 64 << 10

// Server exposes a RecordStore as the /usuarios REST resource.
type Server struct {
	store  ports.RecordStore
	logger *applog.Logger
	router chi.Router
}

func NewServer(store ports.RecordStore, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Default(applog.ComponentStore)
	}
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(trace.NewMiddleware(logger).Middleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the handler with the timeouts used in production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, "list", err)
		return
	}
	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d core.Draft
	if err := decode(r, &d); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := s.store.Create(r.Context(), d)
	if err != nil {
		s.fail(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var rec core.Record
	if err := decode(r, &rec); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rec.ID = id
	out, err := s.store.Update(r.Context(), id, rec)
	if err != nil {
		s.fail(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps store errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "record not found")
	case errors.Is(err, services.ErrInvalidRecord):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Store operation failed",
			applog.FieldOperation, op,
			applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {"error": msg, "request_id": id} so a client
// report can be matched with the server log line.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	body := map[string]string{"error": msg}
	if id := trace.GetRequestID(r.Context()); id != "" {
		body["request_id"] = id
	}
	writeJSON(w, status, body)
}
