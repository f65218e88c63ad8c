package router

import (
	"github.com/gin-gonic/gin"

	mdw "eventlink/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：注册登录、浏览、购票、个人中心
func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d, "api")

	// 前缀；匿名可访问，带 token 时解析身份
	api := r.Group("/api/v1")
	api.Use(mdw.OptionalAuth(d.JWT))

	// 鉴权分组（⚠️ /me 必须挂这里，才能拿到 userId）
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(d.JWT, ""))

	mountAll(api,
		authModule{d: d, authUser: authUser},
		eventsModule{d: d, authUser: authUser},
	)
	return r
}
