package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
)

type AdminHandler struct {
	admin      services.AdminService
	membership services.MembershipService
}

func NewAdminHandler(admin services.AdminService, membership services.MembershipService) *AdminHandler {
	return &AdminHandler{admin: admin, membership: membership}
}

// GET /admin/stats
func (ah *AdminHandler) Stats(c *gin.Context) {
	stats, err := ah.admin.Stats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /admin/users
func (ah *AdminHandler) Users(c *gin.Context) {
	users, err := ah.admin.Users(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// PATCH /admin/users/:id/plan
// body: { "plan": "premium" }
func (ah *AdminHandler) SetPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("invalid user id"))
		return
	}
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("body must be a JSON object with a plan"))
		return
	}
	u, err := ah.membership.SetPlan(c.Request.Context(), id, req.Plan)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, u)
}
