package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/notifier/whatsapp"
)

// WebhookHandler answers the messaging provider's endpoint verification
// handshake. The provider sends its verify token and expects the
// challenge echoed back.
type WebhookHandler struct {
	client *whatsapp.Client
}

func NewWebhookHandler(client *whatsapp.Client) *WebhookHandler {
	return &WebhookHandler{client: client}
}

func (h *WebhookHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/webhooks/whatsapp", h.Verify)
}

func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || !h.client.VerifyWebhookToken(token) {
		c.Status(http.StatusForbidden)
		return
	}
	c.String(http.StatusOK, challenge)
}
