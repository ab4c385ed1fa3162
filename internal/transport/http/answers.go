package http

import (
	"net/http"

	"ecoquiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *handler) listAnswers(c *gin.Context) {
	itemID, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	answers, err := h.svc.Answers.List(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *handler) addAnswer(c *gin.Context) {
	itemID, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	in, ok := h.bindAnswer(c)
	if !ok {
		return
	}
	answer, err := h.svc.Answers.Add(c.Request.Context(), itemID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

func (h *handler) editAnswer(c *gin.Context) {
	itemID, answerID, ok := h.answerParams(c)
	if !ok {
		return
	}
	in, ok := h.bindAnswer(c)
	if !ok {
		return
	}
	answer, err := h.svc.Answers.Edit(c.Request.Context(), itemID, answerID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *handler) deleteAnswer(c *gin.Context) {
	itemID, answerID, ok := h.answerParams(c)
	if !ok {
		return
	}
	if err := h.svc.Answers.Delete(c.Request.Context(), itemID, answerID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindAnswer reads the answer body; the author defaults to the caller.
func (h *handler) bindAnswer(c *gin.Context) (domain.AnswerInput, bool) {
	var in domain.AnswerInput
	if !h.bindJSON(c, &in) {
		return in, false
	}
	if in.UserID == "" {
		if u, ok := currentUser(c); ok {
			in.UserID = u.ID
		}
	}
	return in, true
}

func (h *handler) answerParams(c *gin.Context) (int64, int64, bool) {
	itemID, err := int64Param(c, "id")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	answerID, err := int64Param(c, "answer_id")
	if err != nil {
		h.fail(c, err)
		return 0, 0, false
	}
	return itemID, answerID, true
}
