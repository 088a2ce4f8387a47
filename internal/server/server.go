package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal/arquivo"
	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/normalize"
	"github.com/turbolytics/arquivo/internal/period"
)

const maxUploadMemory = 32 << 20

// Backend is the subset of the API client the server relies on.
type Backend interface {
	List(ctx context.Context, req client.ListRequest) (*normalize.Page, error)
	Get(ctx context.Context, id string) (*arquivo.File, error)
	Upload(ctx context.Context, req client.UploadRequest) (string, error)
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithPageSize(n int) Option {
	return func(s *Server) {
		s.pageSize = n
	}
}

// Server exposes canonical pages of files to the single page application.
type Server struct {
	backend  Backend
	logger   *zap.Logger
	pageSize int
}

func New(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:  backend,
		logger:   zap.NewNop(),
		pageSize: 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type FileView struct {
	arquivo.File
	DetailAvailable bool `json:"detailAvailable"`
}

type PageResponse struct {
	Items      []FileView `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

type UploadResponse struct {
	ID string `json:"id"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LogMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(SessionMiddleware)

	r.Get("/health", s.health)

	r.Route("/api/v1/arquivos", func(r chi.Router) {
		r.Get("/", s.listFiles)
		r.Post("/", s.uploadFile)
		r.Get("/{id}", s.getFile)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := period.FromQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.backend.List(r.Context(), client.ListRequest{
		Period:   p,
		Page:     intParam(q.Get("page"), 1),
		PageSize: intParam(q.Get("pageSize"), s.pageSize),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	files := arquivo.FromPage(*page)
	resp := PageResponse{
		Items:      make([]FileView, 0, len(files)),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(),
	}
	for _, f := range files {
		resp.Items = append(resp.Items, FileView{File: f, DetailAvailable: f.HasID()})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.backend.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, FileView{File: *f, DetailAvailable: f.HasID()})
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, r, &period.ValidationError{Field: client.FileField, Message: "expected a multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(client.FileField)
	if err != nil {
		s.writeError(w, r, &period.ValidationError{Field: client.FileField, Message: "a file is required"})
		return
	}
	defer file.Close()

	fields := make(map[string]string)
	for k, v := range r.MultipartForm.Value {
		if k != client.FileField && len(v) > 0 {
			fields[k] = v[0]
		}
	}

	id, err := s.backend.Upload(r.Context(), client.UploadRequest{
		FileName: header.Filename,
		Content:  file,
		Fields:   fields,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, UploadResponse{ID: id})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusBadGateway

	var verr *period.ValidationError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Field = verr.Field
		resp.Message = verr.Message
	case errors.Is(err, client.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, client.ErrUploadNotPermitted):
		status = http.StatusForbidden
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 {
			status = apiErr.StatusCode
		}
		resp.Message = apiErr.Message
	default:
		s.logger.Error("backend request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	resp.Error = http.StatusText(status)
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response",
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}

func intParam(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
