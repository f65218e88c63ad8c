package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "eventlink/internal/transport/http/response"
)

// Recovery 按统一响应格式返回 500，并记录 panic
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(KeyRequestID)),
					zap.Stack("stack"))
				resp.Abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
