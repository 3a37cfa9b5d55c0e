package router

import "net/http"

// RouteRegistrar is implemented by every controller.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type Controllers struct {
	Health      RouteRegistrar
	Auth        RouteRegistrar
	Account     RouteRegistrar
	Transaction RouteRegistrar
	Chat        RouteRegistrar
	Admin       RouteRegistrar
}

type Middlewares struct {
	// User authenticates and requires a verified caller.
	User func(http.Handler) http.Handler
	// Admin guards the operator channel.
	Admin func(http.Handler) http.Handler
	// Global wraps the whole mux, e.g. CORS.
	Global []func(http.Handler) http.Handler
}

func New(controllers Controllers, mw Middlewares) http.Handler {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)

	register := func(c RouteRegistrar, auth func(http.Handler) http.Handler) {
		if c != nil {
			c.RegisterRoutes(mux, auth)
		}
	}

	register(controllers.Health, nil)
	register(controllers.Auth, nil)
	register(controllers.Account, mw.User)
	register(controllers.Transaction, mw.User)
	register(controllers.Chat, nil)
	register(controllers.Admin, mw.Admin)

	var handler http.Handler = mux
	for i := len(mw.Global) - 1; i >= 0; i-- {
		handler = mw.Global[i](handler)
	}
	return handler
}
