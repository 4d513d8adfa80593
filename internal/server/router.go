package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router is an HTTP router built on [mux.Router] with a middleware stack.
type Router struct {
	mux *mux.Router
}

// NewRouter creates a new [Router] whose unmatched routes answer with JSON errors.
func NewRouter() *Router {
	m := mux.NewRouter()
	m.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	m.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return &Router{mux: m}
}

// Use adds [Middleware] to the stack. The first middleware added is the outermost.
//
// Middleware runs only for matched routes.
func (r *Router) Use(middleware ...Middleware) {
	for _, m := range middleware {
		r.mux.Use(mux.MiddlewareFunc(m))
	}
}

// Handle registers handler for the specified HTTP method and path template.
func (r *Router) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(path, handler).Methods(method)
}

// Handler lets a custom [Handler] register its routes.
func (r *Router) Handler(handler Handler) {
	handler.Register(r.mux)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
