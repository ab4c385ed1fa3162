package http

import (
	"net/http"

	"ecoquiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type challengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *handler) createChallenge(c *gin.Context) {
	var req challengeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ch, err := h.svc.Challenges.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *handler) listChallenges(c *gin.Context) {
	list, err := h.svc.Challenges.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getChallenge(c *gin.Context) {
	ch, err := h.svc.Challenges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *handler) updateChallenge(c *gin.Context) {
	var patch domain.ChallengePatch
	if !h.bindJSON(c, &patch) {
		return
	}
	ch, err := h.svc.Challenges.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *handler) deleteChallenge(c *gin.Context) {
	if err := h.svc.Challenges.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
