package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "eventlink/internal/transport/http/response"
)

// Timeout 给请求 ctx 加截止时间；service 在 ctx 上阻塞（事务、行锁、支付）时会提前返回
func Timeout(d time.Duration, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		l.Warn("request deadline exceeded",
			zap.String("path", c.FullPath()),
			zap.Duration("limit", d),
			zap.String("request_id", c.GetString(KeyRequestID)))
		if !c.Writer.Written() {
			resp.Abort(c, resp.CodeTimeout, "timeout")
		}
	}
}
