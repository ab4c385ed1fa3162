package http

import (
	"net/http"

	"ecoquiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *handler) listMetrics(c *gin.Context) {
	metrics, err := h.svc.Metrics.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *handler) resetMetric(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.svc.Metrics.Reset(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handler) nextSequence(c *gin.Context) {
	name := c.Param("name")
	if name == "" || len(name) > 64 {
		h.fail(c, domain.Invalid("sequence name must be 1-64 characters"))
		return
	}
	v, err := h.svc.Sequences.Next(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": v})
}
