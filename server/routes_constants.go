package server

// Route path constants
const (
	// Pages
	RouteDashboard = "/"
	RouteLogin     = "/login"
	RouteLogout    = "/logout"

	// Handshake
	RouteAuthStart    = "/auth/start"
	RouteAuthCallback = "/auth/callback"
	RouteAccessToken  = "/api/accessToken"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

const (
	// QueryParamJWT overrides the stored session token on any navigation.
	QueryParamJWT = "jwt"
	// QueryParamReturnTo is where /auth/start sends the browser after login.
	QueryParamReturnTo = "return_to"
)
