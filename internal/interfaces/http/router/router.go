package router

import (
	"net/http"
	"path"
	"sort"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes under a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouteInfo describes one mounted route
type RouteInfo struct {
	Method string
	Path   string
	Group  string
}

// Router mounts domain groups under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithMiddleware adds middleware that runs for every API route but not for
// routes mounted directly on the engine (health probes)
func WithMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, middleware...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BasePath is the versioned prefix every registrar is mounted under
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Register queues a registrar for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registered group
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath())
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Routes lists every route known to the engine, sorted by path then method
func (r *Router) Routes() []RouteInfo {
	groups := make(map[string]string)
	for _, registrar := range r.registrars {
		if dg, ok := registrar.(*DomainGroup); ok {
			for _, info := range dg.Routes(r.BasePath()) {
				groups[info.Method+" "+info.Path] = info.Group
			}
		}
	}

	mounted := r.engine.Routes()
	out := make([]RouteInfo, 0, len(mounted))
	for _, rt := range mounted {
		out = append(out, RouteInfo{
			Method: rt.Method,
			Path:   rt.Path,
			Group:  groups[rt.Method+" "+rt.Path],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// DomainGroup collects the routes of one bounded context
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to every route of this group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route for an arbitrary method
func (dg *DomainGroup) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:   method,
		path:     relativePath,
		handlers: handlers,
	})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relativePath, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, relativePath, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, relativePath, handlers...)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, relativePath, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relativePath, handlers...)
}

// With returns a scope whose routes run the given guards before their
// handlers. Routes still belong to dg.
func (dg *DomainGroup) With(guards ...gin.HandlerFunc) *Scope {
	return &Scope{group: dg, guards: guards}
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Routes lists the routes of this group and its subgroups as they will be
// mounted under base
func (dg *DomainGroup) Routes(base string) []RouteInfo {
	prefix := joinPaths(base, dg.prefix)
	out := make([]RouteInfo, 0, len(dg.routes))
	for _, route := range dg.routes {
		out = append(out, RouteInfo{
			Method: route.method,
			Path:   joinPaths(prefix, route.path),
			Group:  dg.name,
		})
	}
	for _, subgroup := range dg.subgroups {
		out = append(out, subgroup.Routes(prefix)...)
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Scope registers routes on a DomainGroup behind a fixed set of guards
type Scope struct {
	group  *DomainGroup
	guards []gin.HandlerFunc
}

func (s *Scope) handle(method, relativePath string, handlers []gin.HandlerFunc) *Scope {
	chain := make([]gin.HandlerFunc, 0, len(s.guards)+len(handlers))
	chain = append(chain, s.guards...)
	chain = append(chain, handlers...)
	s.group.Handle(method, relativePath, chain...)
	return s
}

// GET registers a guarded GET route
func (s *Scope) GET(relativePath string, handlers ...gin.HandlerFunc) *Scope {
	return s.handle(http.MethodGet, relativePath, handlers)
}

// POST registers a guarded POST route
func (s *Scope) POST(relativePath string, handlers ...gin.HandlerFunc) *Scope {
	return s.handle(http.MethodPost, relativePath, handlers)
}

// PUT registers a guarded PUT route
func (s *Scope) PUT(relativePath string, handlers ...gin.HandlerFunc) *Scope {
	return s.handle(http.MethodPut, relativePath, handlers)
}

// PATCH registers a guarded PATCH route
func (s *Scope) PATCH(relativePath string, handlers ...gin.HandlerFunc) *Scope {
	return s.handle(http.MethodPatch, relativePath, handlers)
}

// DELETE registers a guarded DELETE route
func (s *Scope) DELETE(relativePath string, handlers ...gin.HandlerFunc) *Scope {
	return s.handle(http.MethodDelete, relativePath, handlers)
}

// With extends the scope with more guards
func (s *Scope) With(guards ...gin.HandlerFunc) *Scope {
	combined := make([]gin.HandlerFunc, 0, len(s.guards)+len(guards))
	combined = append(combined, s.guards...)
	combined = append(combined, guards...)
	return &Scope{group: s.group, guards: combined}
}

func joinPaths(base, relative string) string {
	if relative == "" {
		return base
	}
	joined := path.Join(base, relative)
	if relative[len(relative)-1] == '/' && joined[len(joined)-1] != '/' {
		return joined + "/"
	}
	return joined
}
