package executions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/toolmesh.dev/internal/core/ports/primary"
	"gitlab.com/toolmesh.dev/internal/core/services/dispatch"
	"gitlab.com/toolmesh.dev/internal/core/services/execution"
	"gitlab.com/toolmesh.dev/internal/domain"
	"gitlab.com/toolmesh.dev/internal/handlers"
	"gitlab.com/toolmesh.dev/internal/handlers/response"
	"gitlab.com/toolmesh.dev/internal/static/errs"
)

// Handler handles tool execution API requests
type Handler struct {
	dispatchService dispatch.IDispatchService
	runtime         execution.IRemoteExecutionService
	logger          primary.Logger
}

func NewHandler(dispatchService dispatch.IDispatchService, runtime execution.IRemoteExecutionService, logger primary.Logger) *Handler {
	return &Handler{
		dispatchService: dispatchService,
		runtime:         runtime,
		logger:          logger,
	}
}

// Register registers the API routes for Handler
func (h *Handler) Register(r *mux.Router, mw *handlers.MiddlewareProvider) {
	r.Handle("/api/tools/execute", mw.JWTMiddleware(http.HandlerFunc(h.ExecuteTool))).Methods("POST")
	r.Handle("/api/executions", mw.JWTMiddleware(http.HandlerFunc(h.GetExecutions))).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
}

// ExecuteRequest represents a tool execution request
type ExecuteRequest struct {
	ToolName   string                   `json:"tool_name"`
	Parameters map[string]interface{}   `json:"parameters"`
	Context    *domain.ExecutionContext `json:"context"`
}

// ExecuteTool dispatches a tool execution through the runtime
func (h *Handler) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ToolName == "" {
		handlers.ResponseError(w, "tool_name is required", http.StatusBadRequest)
		return
	}

	result, err := h.dispatchService.ExecuteTool(r.Context(), req.ToolName, req.Parameters, req.Context)
	if err != nil {
		if errors.Is(err, errs.UnknownTool) {
			handlers.ResponseError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to execute tool", "tool", req.ToolName, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to execute tool", StatusCode: http.StatusInternalServerError})
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, result)
}

// GetExecutions returns recent execution history
func (h *Handler) GetExecutions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.dispatchService.GetRecentExecutions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get executions", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get executions", StatusCode: http.StatusInternalServerError})
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, map[string]interface{}{"executions": records})
}

// Health reports whether any worker can currently accept work
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	healthy := h.runtime.HealthCheck()
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	handlers.ResponseWithJson(w, status, map[string]bool{"healthy": healthy})
}
