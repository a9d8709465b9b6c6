package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Token exchange (API, no session bootstrap)
	s.RegisterRouteHandler("GET "+RouteAccessToken, ChainMiddleware(s.AccessTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAccessToken, ChainMiddleware(s.AccessTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAccessToken, ChainMiddleware(http.NotFound, s.APIMiddleware()...))

	// Handshake routes and logout run outside the bootstrap so they never loop through /login
	s.RegisterRouteHandler("GET "+RouteAuthStart, ChainMiddleware(s.LoginStartHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.LoginCallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthCallback, ChainMiddleware(s.LoginCallbackHandler(), s.HTMLMiddleWare()...)) // For form_post response mode
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Navigations
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare(s.SessionBootstrap())...))
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.SessionBootstrap())...))
	s.RegisterRouteHandler("GET /", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare(s.SessionBootstrap())...))
}
