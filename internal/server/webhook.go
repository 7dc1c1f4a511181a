package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
)

// MidtransWebhook receives payment notifications from the gateway. The
// response is 200 for every processed notification, including replays, so
// the gateway stops retrying.
func (s *Server) MidtransWebhook(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	n := billingdomain.WebhookNotification{
		OrderID:           stringField(payload, "order_id"),
		TransactionStatus: stringField(payload, "transaction_status"),
		FraudStatus:       stringField(payload, "fraud_status"),
		PaymentType:       stringField(payload, "payment_type"),
		Raw:               payload,
	}

	if err := s.billingsvc.HandleWebhook(c.Request.Context(), n); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func stringField(payload map[string]interface{}, key string) string {
	v, _ := payload[key].(string)
	return v
}
