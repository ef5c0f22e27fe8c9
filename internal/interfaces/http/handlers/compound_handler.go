package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
)

// CompoundHandler runs feasibility analyses.
type CompoundHandler struct {
	svc     compound.Service
	logger  logging.Logger
	timeout time.Duration
}

// NewCompoundHandler bounds each request by timeout when it is positive.
func NewCompoundHandler(svc compound.Service, logger logging.Logger, timeout time.Duration) *CompoundHandler {
	return &CompoundHandler{svc: svc, logger: logger, timeout: timeout}
}

func (h *CompoundHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/compounds")
	g.POST("/analyze", h.Analyze)
	g.POST("/analyze/batch", h.AnalyzeBatch)
}

type BatchRequest struct {
	Requests []*compound.AnalyzeRequest `json:"requests"`
}

func (h *CompoundHandler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.timeout)
	}
	return context.WithCancel(c.Request.Context())
}

func (h *CompoundHandler) Analyze(c *gin.Context) {
	var req compound.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	res, err := h.svc.Analyze(ctx, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AnalyzeBatch answers 200 even when some items fail; per-item errors are
// reported inline.
func (h *CompoundHandler) AnalyzeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	res, err := h.svc.AnalyzeBatch(ctx, req.Requests)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
