// Package middleware provides gin middleware for the print API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/missionpuck/logprinter/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Log uploads are the only large bodies the API accepts.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		// Wrap the body with a limited reader for streaming requests
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
