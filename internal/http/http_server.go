package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/toolmesh.dev/internal/config"
	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/services/dispatch"
	"gitlab.com/toolmesh.dev/internal/core/services/execution"
	"gitlab.com/toolmesh.dev/internal/core/services/worker"
	"gitlab.com/toolmesh.dev/internal/handlers"
	"gitlab.com/toolmesh.dev/internal/handlers/executions"
	"gitlab.com/toolmesh.dev/internal/handlers/workers"
)

type ServiceProvider struct {
	workerService   worker.IWorkerRegistrationService
	dispatchService dispatch.IDispatchService
	runtime         execution.IRemoteExecutionService
}

func NewServiceProvider(
	workerService worker.IWorkerRegistrationService,
	dispatchService dispatch.IDispatchService,
	runtime execution.IRemoteExecutionService,
) *ServiceProvider {
	return &ServiceProvider{
		workerService:   workerService,
		dispatchService: dispatchService,
		runtime:         runtime,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	AuthConfig      *config.AuthConfig
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, authCfg *config.AuthConfig, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		AuthConfig:      authCfg,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	mw := handlers.NewMiddlewareProvider(s.AuthConfig)
	workers.NewHandler(s.ServiceProvider.workerService, s.logger).Register(r, mw)
	executions.NewHandler(s.ServiceProvider.dispatchService, s.ServiceProvider.runtime, s.logger).Register(r, mw)
	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
	}
}
