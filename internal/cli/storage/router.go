package storage

import "context"

// Router dispatches each key to its own backend, falling back to a default
// store for keys without a route. The CLI uses it to keep the token in the
// OS keychain while the user record lives in a plain file.
type Router struct {
	fallback Store
	routes   map[string]Store
}

func NewRouter(fallback Store) *Router {
	return &Router{fallback: fallback, routes: make(map[string]Store)}
}

// Route sends key to store. It returns the router for chaining.
func (r *Router) Route(key string, store Store) *Router {
	r.routes[key] = store
	return r
}

func (r *Router) storeFor(key string) Store {
	if s, ok := r.routes[key]; ok {
		return s
	}
	return r.fallback
}

func (r *Router) Get(ctx context.Context, key string) (string, error) {
	return r.storeFor(key).Get(ctx, key)
}

func (r *Router) Set(ctx context.Context, key, value string) error {
	return r.storeFor(key).Set(ctx, key, value)
}

func (r *Router) Remove(ctx context.Context, key string) error {
	return r.storeFor(key).Remove(ctx, key)
}
