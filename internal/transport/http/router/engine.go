package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"eventlink/internal/core/auth"
	"eventlink/internal/core/config"
	"eventlink/internal/core/server"
	"eventlink/internal/service"
	mdw "eventlink/internal/transport/http/middleware"
)

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log        *zap.Logger
	JWT        *auth.JWTer
	Catalog    *service.Catalog
	Ledger     *service.Ledger
	Settlement *service.Settlement
	Accounts   *service.Accounts
	Limits     config.Limits
	Origins    []string
	// Registry 为 nil 时不暴露 /metrics，HTTP 指标也不注册
	Registry *prometheus.Registry
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func newEngine(d Deps, name string) *gin.Engine {
	l := d.logger()
	r := server.NewRouter(l, d.Origins)

	chain := []gin.HandlerFunc{mdw.RequestID()}
	if d.Limits.GlobalRatePerSec > 0 {
		chain = append(chain, mdw.RateLimit(rate.Limit(d.Limits.GlobalRatePerSec), max(1, d.Limits.GlobalBurst)))
	}
	if d.Limits.RatePerSec > 0 {
		chain = append(chain, mdw.RateLimitPerIP(rate.Limit(d.Limits.RatePerSec), max(1, d.Limits.Burst)))
	}
	if d.Limits.MaxConcurrent > 0 {
		chain = append(chain, mdw.ConcurrencyLimit(d.Limits.MaxConcurrent, time.Duration(d.Limits.QueueWaitMs)*time.Millisecond))
	}
	if d.Limits.MaxBodyBytes > 0 {
		chain = append(chain, mdw.MaxBodyBytes(d.Limits.MaxBodyBytes))
	}
	if d.Limits.TimeoutSec > 0 {
		chain = append(chain, mdw.Timeout(time.Duration(d.Limits.TimeoutSec)*time.Second, l))
	}
	chain = append(chain, mdw.Recovery(l))
	if d.Registry != nil {
		chain = append(chain, mdw.Metrics(mdw.NewHTTPMetrics(d.Registry, name)))
	}
	r.Use(chain...)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	return r
}
