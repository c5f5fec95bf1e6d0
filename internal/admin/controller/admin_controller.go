package controller

import (
	"examarchive/internal/admin/service"
	"examarchive/internal/common/http/middleware"
	"examarchive/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// AdminController handles admin session endpoints.
type AdminController struct {
	sessions *service.SessionRegistry
}

// NewAdminController creates a new AdminController.
func NewAdminController(sessions *service.SessionRegistry) *AdminController {
	return &AdminController{sessions: sessions}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the admin password for a session token.
func (h *AdminController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Password is required")
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, session)
}

// Logout invalidates the presented token. Logging out twice is fine.
func (h *AdminController) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	h.sessions.Logout(c.Request.Context(), token)
	response.SuccessWithMessage(c, "Logged out", nil)
}

// Verify reports whether the presented token is still a live session.
func (h *AdminController) Verify(c *gin.Context) {
	session, err := h.sessions.Verify(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, session)
}
