package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carbonlens/emissions-tracker/internal/async"
	"github.com/carbonlens/emissions-tracker/internal/export"
	"github.com/carbonlens/emissions-tracker/internal/pipeline"
)

// Pinger is what the health endpoint needs from the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the import pipeline to its HTTP surface.
type Server struct {
	logger         *zap.Logger
	proc           *pipeline.Processor
	queue          async.Queue
	export         *export.Service
	db             Pinger
	maxUploadBytes int64
}

func New(logger *zap.Logger, proc *pipeline.Processor, queue async.Queue, exp *export.Service, db Pinger, maxUploadBytes int64) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 << 20
	}
	return &Server{
		logger:         logger,
		proc:           proc,
		queue:          queue,
		export:         exp,
		db:             db,
		maxUploadBytes: maxUploadBytes,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/field-mapping", s.handleSuggestMappings)
		r.Post("/field-mapping", s.handleCommitMappings)
		r.Post("/import", s.handleImport)
		r.Post("/mobile/upload", s.handleMobileUpload)
		r.Get("/records/export", s.handleExport)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("health check db ping failed", zap.Error(err))
			WriteError(w, r, http.StatusInternalServerError, "DB_UNAVAILABLE", "database ping failed")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
