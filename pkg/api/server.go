package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rmarques/pointblank/pkg/api/handlers"
	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/registry"
	"github.com/rmarques/pointblank/pkg/repositories"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port          int
	TLS           *TLSConfig
	Registry      *registry.Registry
	Repository    repositories.Repository
	StreamHandler http.Handler
}

// NewAPIServer creates a new http.Server exposing the session API and the
// session snapshot stream.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", handlers.HandleListSessions(opts.Registry)).Methods(http.MethodGet)
	api.HandleFunc("/sessions", handlers.HandleCreateSession(opts.Registry)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/join", handlers.HandleJoinSession(opts.Registry)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/actions", handlers.HandleSubmitAction(opts.Registry)).Methods(http.MethodPost)
	api.Handle("/sessions/{sessionID}/stream", opts.StreamHandler).Methods(http.MethodGet)
	api.HandleFunc("/matches", handlers.HandleListMatches(opts.Repository)).Methods(http.MethodGet)
	api.HandleFunc("/matches/{sessionID}", handlers.HandleGetMatch(opts.Repository)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
