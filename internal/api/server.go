// Package api serves the atlas over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/atlas"
	"github.com/sells-group/water-atlas/internal/store"
)

// Server routes API requests. Bookmarks may be nil, which disables the
// bookmark endpoints.
type Server struct {
	svc       *atlas.Service
	bookmarks store.Store
	now       func() time.Time
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the clock used for export filenames.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds the router.
func NewServer(svc *atlas.Service, bookmarks store.Store, corsOrigins []string, opts ...Option) *Server {
	s := &Server{svc: svc, bookmarks: bookmarks, now: time.Now}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/view", s.handleView)
		r.Post("/view/actions", s.handleViewActions)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", s.handleListBookmarks)
			r.Post("/", s.handleCreateBookmark)
			r.Get("/{id}", s.handleGetBookmark)
			r.Delete("/{id}", s.handleDeleteBookmark)
		})
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
