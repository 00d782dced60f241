// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yaya-jobs/internal/common/config"
	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/matching"
	"yaya-jobs/internal/notify"
	"yaya-jobs/internal/store"
	"yaya-jobs/internal/ussd"
)

// Server hosts the gateway callback and the management API.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     logger.Logger
}

// Dependencies carries the collaborators the HTTP layer routes requests to.
type Dependencies struct {
	Dialog     *ussd.Engine
	Matcher    *matching.Engine
	Dispatcher *notify.Dispatcher
	Directory  store.DirectoryStore
}

func New(cfg *config.Config, deps Dependencies, log logger.Logger) *Server {
	h := &handlers{
		config:     cfg,
		dialog:     deps.Dialog,
		matcher:    deps.Matcher,
		dispatcher: deps.Dispatcher,
		dir:        deps.Directory,
		logger:     log.WithFields(map[string]interface{}{"component": "http-server"}),
		started:    time.Now(),
	}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.HandleFunc("/api/ussd", h.handleUssd).Methods(http.MethodPost)
	router.HandleFunc("/api/jobs", h.handleCreateJob).Methods(http.MethodPost)
	router.HandleFunc("/api/workers/register", h.handleRegisterWorker).Methods(http.MethodPost)
	router.HandleFunc("/api/workers/count", h.handleWorkerCount).Methods(http.MethodGet)
	router.HandleFunc("/api/skills", h.handleListSkills).Methods(http.MethodGet)
	router.HandleFunc("/api/locations", h.handleListLocations).Methods(http.MethodGet)
	router.HandleFunc("/api/notifications/job-match/{matchId}", h.handleNotifyMatch).Methods(http.MethodPost)
	router.HandleFunc("/api/sms", h.handleInboundSMS).Methods(http.MethodPost)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
		},
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down", nil)
	return s.httpServer.Shutdown(ctx)
}

// requestIDMiddleware tags every response with a request id, minting one
// when the caller did not supply it.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
