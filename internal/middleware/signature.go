package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

// maxWebhookBody caps how much of a webhook body is read for verification.
const maxWebhookBody = 1 << 20

// SignWebhookBody returns the hex signature the gateway is expected to send for body.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookSignature verifies SignatureHeader against the body. An empty secret disables
// verification. The body is restored for the handler.
func WebhookSignature(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		logger := GetLoggerFromCtx(c.Request.Context())

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			logger.Warn("Failed to read webhook body", "error", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		got, err := hex.DecodeString(c.GetHeader(SignatureHeader))
		if err != nil || len(got) == 0 {
			logger.Warn("Webhook signature missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		if !hmac.Equal(got, mac.Sum(nil)) {
			logger.Warn("Webhook signature mismatch")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}

		c.Next()
	}
}
