package router

import "github.com/gin-gonic/gin"

// Registry mounts modules either at the root or under /api.
type Registry struct {
	Engine *gin.Engine
	Root   *gin.RouterGroup
	API    *gin.RouterGroup
	root   []Module
	api    []Module
}

// NewRegistry derives its groups from the engine's handler chain at call time,
// so global middleware must be installed on the engine first.
func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, Root: engine.Group("")}
}

func (r *Registry) Add(mod Module) {
	r.root = append(r.root, mod)
}

func (r *Registry) AddAPI(mod Module) {
	r.api = append(r.api, mod)
}

func (r *Registry) RegisterAll() {
	r.API = r.Root.Group("/api")
	for _, m := range r.root {
		m.Register(r.Root)
	}
	for _, m := range r.api {
		m.Register(r.API)
	}
}
