package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
)

type MembershipHandler struct {
	membership services.MembershipService
}

func NewMembershipHandler(membership services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membership: membership}
}

// GET /api/membership/plans
func (mh *MembershipHandler) Plans(c *gin.Context) {
	response.RespondOK(c, gin.H{"plans": mh.membership.Plans()})
}
