// Package server exposes the tracking application over HTTP: the public
// partner surface is proxied verbatim into the gateway pipeline, the
// operational surface serves the dashboards and driver tooling.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/engine"
	"github.com/hidalgo-logistics/tracking/internal/gateway"
	"github.com/hidalgo-logistics/tracking/internal/storage"
)

type Server struct {
	gateway    *gateway.Gateway
	engine     *engine.Engine
	store      *storage.Store
	users      *storage.UserDirectory
	auditLog   *storage.AuditLog
	logger     *zap.Logger
	httpServer *http.Server
}

func New(gw *gateway.Gateway, eng *engine.Engine, store *storage.Store, users *storage.UserDirectory, auditLog *storage.AuditLog, logger *zap.Logger) *Server {
	return &Server{
		gateway:  gw,
		engine:   eng,
		store:    store,
		users:    users,
		auditLog: auditLog,
		logger:   logger,
	}
}

// Run serves until ctx is cancelled, then drains with a grace period.
func (s *Server) Run(ctx context.Context, port string) error {
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("HTTP server listening", zap.String("port", port))

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLogMiddleware)

	// Public partner surface: everything under /api/public goes through the
	// gateway pipeline untouched, including unknown endpoints.
	r.PathPrefix("/api/public/").HandlerFunc(s.handlePublicAPI)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	ops := r.NewRoute().Subrouter()
	ops.Use(s.basicAuthMiddleware)
	ops.HandleFunc("/shipments", s.handleListShipments).Methods(http.MethodGet)
	ops.HandleFunc("/shipments/{id}", s.handleGetShipment).Methods(http.MethodGet)
	ops.HandleFunc("/shipments/{id}/events", s.handleShipmentEvents).Methods(http.MethodGet)
	ops.HandleFunc("/shipments/{id}/status", s.handleApplyStatus).Methods(http.MethodPost)
	ops.HandleFunc("/shipments/{id}/assign", s.handleAssignDriver).Methods(http.MethodPost)
	ops.HandleFunc("/assignments/batch", s.handleAssignBatch).Methods(http.MethodPost)
	ops.HandleFunc("/scan/{code}", s.handleScan).Methods(http.MethodGet)
	ops.HandleFunc("/drivers", s.handleListDrivers).Methods(http.MethodGet)
	ops.HandleFunc("/logs", s.handleListLogs).Methods(http.MethodGet)

	return r
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Error("Failed to encode response", zap.Error(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
