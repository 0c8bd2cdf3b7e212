package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar mounts a set of endpoints onto an API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under a versioned API prefix
type Router struct {
	engine *gin.Engine
	api    *gin.RouterGroup
	logger *zap.Logger
}

// New creates a router rooted at /api/v1
func New(engine *gin.Engine, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		engine: engine,
		api:    engine.Group("/api/v1"),
		logger: logger.Named("router"),
	}
}

// Register mounts one or more registrars under the API prefix
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r.api)
	}
	return r
}

// Group returns a sub-group under the API prefix with extra middleware
func (r *Router) Group(path string, middleware ...gin.HandlerFunc) *gin.RouterGroup {
	group := r.api.Group(path)
	group.Use(middleware...)
	return group
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
