package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Billing endpoints are placeholders: checkout hands back no URL and the
// webhook acknowledges without acting. Real payment-provider integration
// happens outside this service.

func (s *Server) CreateCheckoutSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": nil})
}

func (s *Server) BillingWebhook(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"received": true})
}
