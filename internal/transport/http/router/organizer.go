package router

import (
	"github.com/gin-gonic/gin"

	"eventlink/internal/domain"
	mdw "eventlink/internal/transport/http/middleware"
)

// NewOrganizerEngine 组织者端 v1（统一要求 organizer 角色）
func NewOrganizerEngine(d Deps) *gin.Engine {
	r := newEngine(d, "organizer")

	org := r.Group("/organizer/v1")
	org.Use(mdw.AuthJWT(d.JWT, domain.RoleOrganizer))

	mountAll(org, organizerModule{d: d})
	return r
}
