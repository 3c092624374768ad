package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animal-registry/internal/assets"
	"animal-registry/internal/store"
)

// Server wires the record store and the asset store to the HTTP surface.
type Server struct {
	cfg    Config
	store  store.Store
	assets assets.Store
	log    *Logger

	handler    http.Handler
	httpServer *http.Server
}

func New(cfg Config, st store.Store, as assets.Store, log *Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		assets: as,
		log:    log,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(securityHeaders)
	r.Use(s.logRequests)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/animals", s.listAnimals)
	r.Post("/animals", s.createAnimal)
	r.Get("/categories", s.listCategories)
	r.Post("/categories", s.createCategory)
	r.Get("/uploads/{name}", s.serveUpload)

	s.handler = r
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
