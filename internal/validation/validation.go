// Package validation provides input validation for the walletguard API.
//
// Wallet identifiers are deliberately not validated here: they are opaque
// lookup keys into the training graph, and a string the encoder does not
// know is a not-found condition, not a malformed request.
package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
