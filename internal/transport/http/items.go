package http

import (
	"net/http"

	"ecoquiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *handler) createItem(c *gin.Context) {
	var in domain.ItemInput
	if !h.bindJSON(c, &in) {
		return
	}
	item, err := h.svc.Items.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) listItems(c *gin.Context) {
	items, err := h.svc.Items.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handler) deleteAllItems(c *gin.Context) {
	n, err := h.svc.Items.DeleteAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *handler) getItem(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.svc.Items.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) updateItem(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var patch domain.ItemPatch
	if !h.bindJSON(c, &patch) {
		return
	}
	item, err := h.svc.Items.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) deleteItem(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.svc.Items.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
