package http

import (
	"errors"
	"net/http"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/internal/pipeline/service"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WorkflowHandler handles HTTP requests for workflows.
type WorkflowHandler struct {
	orchestrator service.OrchestratorService
	logger       *logger.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(orchestrator service.OrchestratorService, logger *logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers the workflow routes to the Echo group.
func (h *WorkflowHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.StartWorkflow)
	g.GET("", h.ListWorkflows)
	g.GET("/:id", h.GetWorkflow)
	g.DELETE("/:id", h.CancelWorkflow)
}

// StartWorkflow godoc
// @Summary Start a workflow
// @Description Start the harvest, nlp-processing and correlation pipeline. An empty symbol analyses every coin found in the harvested texts.
// @Tags workflows
// @Accept  json
// @Produce  json
// @Param   request  body    dto.StartWorkflowRequest   false    "Target symbol"
// @Success 202 {object} dto.StartWorkflowResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /workflows [post]
func (h *WorkflowHandler) StartWorkflow(c echo.Context) error {
	var req dto.StartWorkflowRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
		}
	}

	id, err := h.orchestrator.Start(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("Failed to start workflow", logger.ErrorField(err))
		if errors.Is(err, service.ErrShuttingDown) {
			return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to start workflow"})
	}

	return c.JSON(http.StatusAccepted, dto.StartWorkflowResponse{WorkflowID: id, Status: "started"})
}

// GetWorkflow godoc
// @Summary Get a workflow
// @Description Get a workflow record with its steps
// @Tags workflows
// @Produce  json
// @Param   id  path    string true    "Workflow ID"
// @Success 200 {object} entity.Workflow
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) GetWorkflow(c echo.Context) error {
	wf, err := h.orchestrator.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to get workflow", logger.ErrorField(err), logger.StringField("workflow_id", c.Param("id")))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get workflow"})
	}
	return c.JSON(http.StatusOK, wf)
}

// ListWorkflows godoc
// @Summary List workflows
// @Description List active workflows, the retained history and metrics over it
// @Tags workflows
// @Produce  json
// @Success 200 {object} dto.WorkflowListResponse
// @Router /workflows [get]
func (h *WorkflowHandler) ListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orchestrator.List(c.Request().Context()))
}

// CancelWorkflow godoc
// @Summary Cancel a workflow
// @Description Cancel a running workflow. The step in flight finishes but its output is discarded.
// @Tags workflows
// @Produce  json
// @Param   id  path    string true    "Workflow ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /workflows/{id} [delete]
func (h *WorkflowHandler) CancelWorkflow(c echo.Context) error {
	id := c.Param("id")
	err := h.orchestrator.Cancel(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"workflowId": id, "status": "cancelled"})
	case errors.Is(err, service.ErrWorkflowNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotCancellable):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("Failed to cancel workflow", logger.ErrorField(err), logger.StringField("workflow_id", id))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to cancel workflow"})
	}
}
