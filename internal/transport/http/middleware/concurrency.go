package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "eventlink/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求数上限；排队超过 wait 返回 503（wait<=0 时不排队）
func ConcurrencyLimit(n int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(n)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			if wait <= 0 {
				resp.Abort(c, resp.CodeServerBusy, "server busy")
				return
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				resp.Abort(c, resp.CodeServerBusy, "server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
