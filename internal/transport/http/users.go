package http

import (
	"net/http"

	"ecoquiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenRequest accepts the OAuth2 password form as well as JSON.
type tokenRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (h *handler) register(c *gin.Context) {
	var req credentials
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handler) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, domain.Invalid("malformed credentials: %v", err))
		return
	}
	tok, err := h.svc.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h *handler) listUsers(c *gin.Context) {
	users, err := h.svc.Auth.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handler) getUser(c *gin.Context) {
	user, err := h.svc.Auth.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) updateUser(c *gin.Context) {
	var patch domain.UserPatch
	if !h.bindJSON(c, &patch) {
		return
	}
	user, err := h.svc.Auth.UpdateUser(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) deleteUser(c *gin.Context) {
	if err := h.svc.Auth.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
