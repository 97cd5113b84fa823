package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartSlack covers form boundaries and part headers around the file itself.
const multipartSlack = 1 << 20

// BodyLimit caps the request body at limit plus multipart framing; 0 disables the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartSlack)
		}
		c.Next()
	}
}
