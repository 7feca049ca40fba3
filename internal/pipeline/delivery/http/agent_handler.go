package http

import (
	"errors"
	"net/http"
	"strings"

	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/internal/pipeline/harvester"
	"golang-crypto-sentinel/internal/pipeline/service"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AgentHandler serves agent health, data sources and direct stage calls.
type AgentHandler struct {
	agentService service.AgentService
	logger       *logger.Logger
}

func NewAgentHandler(agentService service.AgentService, logger *logger.Logger) *AgentHandler {
	return &AgentHandler{agentService: agentService, logger: logger}
}

// RegisterRoutes registers agent, data source and diagnostics routes on the API root group.
func (h *AgentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/agents/health", h.GetAgentHealth)
	g.GET("/data-sources", h.GetDataSources)

	diagnostics := g.Group("/diagnostics")
	diagnostics.POST("/harvest", h.Harvest)
	diagnostics.POST("/score", h.Score)
	diagnostics.POST("/correlate", h.Correlate)
}

// GetAgentHealth godoc
// @Summary Agent health
// @Description Status of each pipeline stage, per-source health and the correlator summary
// @Tags agents
// @Produce  json
// @Success 200 {object} dto.AgentHealthResponse
// @Router /agents/health [get]
func (h *AgentHandler) GetAgentHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, h.agentService.Health(c.Request().Context()))
}

// GetDataSources godoc
// @Summary List data sources
// @Tags agents
// @Produce  json
// @Success 200 {array} dto.DataSource
// @Router /data-sources [get]
func (h *AgentHandler) GetDataSources(c echo.Context) error {
	return c.JSON(http.StatusOK, h.agentService.DataSources(c.Request().Context()))
}

// Harvest godoc
// @Summary Run the harvester only
// @Tags diagnostics
// @Accept  json
// @Produce  json
// @Param   request  body    dto.HarvestRequest   true    "Symbol"
// @Success 200 {array} dto.HarvestedItem
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /diagnostics/harvest [post]
func (h *AgentHandler) Harvest(c echo.Context) error {
	var req dto.HarvestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	items, err := h.agentService.Harvest(c.Request().Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, harvester.ErrNoSourceData) {
			return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Diagnostic harvest failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, items)
}

// Score godoc
// @Summary Score one text
// @Tags diagnostics
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ScoreRequest   true    "Text to score"
// @Success 200 {object} dto.TextAnalysis
// @Failure 400 {object} dto.ErrorResponse
// @Router /diagnostics/score [post]
func (h *AgentHandler) Score(c echo.Context) error {
	var req dto.ScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}
	return c.JSON(http.StatusOK, h.agentService.Score(c.Request().Context(), req.Text))
}

// Correlate godoc
// @Summary Correlate given sentiments
// @Tags diagnostics
// @Accept  json
// @Produce  json
// @Param   request  body    dto.CorrelateRequest   true    "Per-symbol sentiment"
// @Success 200 {object} dto.CorrelateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /diagnostics/correlate [post]
func (h *AgentHandler) Correlate(c echo.Context) error {
	var req dto.CorrelateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}
	if len(req.Sentiments) == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "sentiments must not be empty"})
	}
	for _, s := range req.Sentiments {
		if strings.TrimSpace(s.Symbol) == "" || !s.Sentiment.IsValid() {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "each sentiment needs a symbol and a positive, negative or neutral label"})
		}
	}
	return c.JSON(http.StatusOK, h.agentService.Correlate(c.Request().Context(), req.Sentiments))
}
