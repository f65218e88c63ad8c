package router

import (
	"cmp"
	"slices"

	"github.com/gin-gonic/gin"
)

// Module 一组路由；同一 engine 下的模块按 Priority 升序挂载
type Module interface {
	Mount(g *gin.RouterGroup)
}

// 可选：不实现则默认 100
type prioritizer interface{ Priority() int }

const defaultPriority = 100

func mountAll(g *gin.RouterGroup, mods ...Module) {
	slices.SortStableFunc(mods, func(a, b Module) int {
		return cmp.Compare(priorityOf(a), priorityOf(b))
	})
	for _, m := range mods {
		m.Mount(g)
	}
}

func priorityOf(m Module) int {
	if p, ok := m.(prioritizer); ok {
		return p.Priority()
	}
	return defaultPriority
}
