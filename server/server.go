package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-dashboard-session/exchange"
	"github.com/jrsteele09/go-dashboard-session/identity"
	"github.com/jrsteele09/go-dashboard-session/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// LoginFlow drives the browser side of the identity provider handshake.
type LoginFlow interface {
	// Begin returns the URL to redirect the browser to.
	Begin(returnURL string) (string, error)
	// Complete redeems the callback and returns the token and the return URL given to Begin.
	Complete(r *http.Request) (*oauth2.Token, string, error)
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	identity  identity.Client
	exchanger exchange.Exchanger
	loginFlow LoginFlow
	registry  *prometheus.Registry
	metrics   *metrics
}

type Option func(*Server)

// WithLoginFlow enables the /auth/start and /auth/callback routes.
func WithLoginFlow(flow LoginFlow) Option {
	return func(s *Server) {
		s.loginFlow = flow
	}
}

// WithRegistry sets the Prometheus registry served on /metrics.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

func New(config config.Config, identityClient identity.Client, exchanger exchange.Exchanger, opts ...Option) (*Server, error) {
	if identityClient == nil {
		return nil, fmt.Errorf("[Server New] identity client is required")
	}
	if exchanger == nil {
		return nil, fmt.Errorf("[Server New] token exchanger is required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		identity:  identityClient,
		exchanger: exchanger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colourMethod(method), path))
}

func logError(method, path, error string) {
	log.Error().Msg(fmt.Sprintf("[%-19s] %s %s", colourMethod(method), path, Red+error+ResetColor))
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
