package workers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/services/worker"
	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/handlers"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

// ApiHandler handles worker API requests
type ApiHandler struct {
	WorkerService worker.IWorkerRegistrationService
	logger        primary.Logger
}

func NewHandler(workerService worker.IWorkerRegistrationService, logger primary.Logger) *ApiHandler {
	return &ApiHandler{
		WorkerService: workerService,
		logger:        logger,
	}
}

// Register registers the API routes for ApiHandler
func (api *ApiHandler) Register(r *mux.Router, mw *handlers.MiddlewareProvider) {
	r.Handle("/api/workers", mw.WorkerAuthMiddleware(http.HandlerFunc(api.RegisterWorker))).Methods("POST")
	r.HandleFunc("/api/workers/{workerId}", api.UnregisterWorker).Methods("DELETE")
	r.HandleFunc("/api/workers/{workerId}/heartbeat", api.Heartbeat).Methods("POST")
	r.HandleFunc("/api/workers", api.GetWorkers).Methods("GET")
	r.HandleFunc("/api/workers/stats", api.GetStats).Methods("GET")
}

// RegisterWorkerRequest represents a request to register a worker
type RegisterWorkerRequest struct {
	ID            string   `json:"id"`
	Host          string   `json:"host"`
	Port          int      `json:"port"`
	Capabilities  []string `json:"capabilities"`
	MaxConcurrent int      `json:"max_concurrent"`
}

// RegisterWorker handles worker registration requests
func (api *ApiHandler) RegisterWorker(w http.ResponseWriter, r *http.Request) {
	var req RegisterWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.logger.Error("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	record := domain.NewWorkerRecord(req.ID, req.Host, req.Port, req.Capabilities, req.MaxConcurrent)
	if err := api.WorkerService.RegisterWorker(r.Context(), record); err != nil {
		api.logger.Error("Failed to register worker", "error", err)
		handlers.ResponseError(w, err.Error(), http.StatusBadRequest)
		return
	}

	handlers.ResponseWithJson(w, http.StatusCreated, map[string]string{"id": record.ID})
}

// UnregisterWorker handles worker removal requests
func (api *ApiHandler) UnregisterWorker(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["workerId"]

	if err := api.WorkerService.UnregisterWorker(r.Context(), workerID); err != nil {
		api.logger.Error("Failed to unregister worker", "workerId", workerID, "error", err)
		handlers.ResponseError(w, "Failed to unregister worker", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Heartbeat handles worker heartbeat requests
func (api *ApiHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["workerId"]

	if err := api.WorkerService.Heartbeat(r.Context(), workerID); err != nil {
		if errors.Is(err, errs.WorkerNotFound) {
			handlers.ResponseError(w, "Worker not found", http.StatusNotFound)
			return
		}
		api.logger.Error("Failed to process heartbeat", "workerId", workerID, "error", err)
		handlers.ResponseError(w, "Failed to process heartbeat", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetWorkers handles workers retrieval requests
func (api *ApiHandler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	workers := api.WorkerService.GetAllWorkers(r.Context())
	handlers.ResponseWithJson(w, http.StatusOK, map[string]interface{}{"workers": workers})
}

// GetStats handles pool statistics requests
func (api *ApiHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := api.WorkerService.GetPoolStats(r.Context())
	handlers.ResponseWithJson(w, http.StatusOK, stats)
}
