package server

import (
	"context"
	"net/http"
	"time"

	"posts-api/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	store  store.Store
	logger *zap.Logger
	router *mux.Router
	server *http.Server
}

func NewServer(st store.Store, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	// "/posts" and "/posts/" are the same collection.
	for _, root := range []string{"/posts", "/posts/"} {
		s.router.Handle(root, s.handle(s.handleList)).Methods(http.MethodGet)
		s.router.Handle(root, s.handle(s.handleCreate, s.parseBody, s.deriveSlug)).Methods(http.MethodPost)
	}
	s.router.Handle("/posts/{postId}", s.handle(s.handleUpdate, s.parseBody, s.resolvePost)).Methods(http.MethodPut)
	s.router.Handle("/posts/{postId}", s.handle(s.handleDelete, s.resolvePost)).Methods(http.MethodDelete)

	// Unmatched paths and methods share one fallback.
	s.router.NotFoundHandler = s.logRequests(http.HandlerFunc(s.pathNotFound))
	s.router.MethodNotAllowedHandler = s.logRequests(http.HandlerFunc(s.pathNotFound))
}

// ServeHTTP lets the server be mounted or driven directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("The application is running", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
