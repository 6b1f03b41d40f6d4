package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kiwiz-app/kiwiz-backend/internal/http/response"
	"github.com/kiwiz-app/kiwiz-backend/internal/services"
)

type NewsletterHandler struct {
	newsletter services.NewsletterService
}

func NewNewsletterHandler(newsletter services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

// POST /api/subscribe-newsletter
func (nh *NewsletterHandler) Subscribe(c *gin.Context) {
	sub, err := nh.newsletter.Subscribe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "email": sub.Email, "subscribedAt": sub.SubscribedAt})
}

// DELETE /api/subscribe-newsletter
func (nh *NewsletterHandler) Unsubscribe(c *gin.Context) {
	if err := nh.newsletter.Unsubscribe(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
