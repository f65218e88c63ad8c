package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "eventlink/internal/transport/http/response"
)

// MaxBodyBytes 声明了 Content-Length 且超限时直接拒绝；
// 未声明长度的请求在读取超限时由 ShouldBindJSON 报错，action 映射为 400
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
