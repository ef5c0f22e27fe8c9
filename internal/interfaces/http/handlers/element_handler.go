package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// ElementHandler serves periodic-table records.
type ElementHandler struct {
	svc    compound.Service
	logger logging.Logger
}

func NewElementHandler(svc compound.Service, logger logging.Logger) *ElementHandler {
	return &ElementHandler{svc: svc, logger: logger}
}

func (h *ElementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/elements")
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:symbol", h.Get)
}

type ElementListResponse struct {
	Elements []etypes.Element `json:"elements"`
	Total    int              `json:"total"`
}

func (h *ElementHandler) List(c *gin.Context) {
	elems, err := h.svc.Elements(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ElementListResponse{Elements: elems, Total: len(elems)})
}

func (h *ElementHandler) Search(c *gin.Context) {
	elems, err := h.svc.SearchElements(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if elems == nil {
		elems = []etypes.Element{}
	}
	c.JSON(http.StatusOK, ElementListResponse{Elements: elems, Total: len(elems)})
}

func (h *ElementHandler) Get(c *gin.Context) {
	elem, err := h.svc.Element(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, elem)
}
