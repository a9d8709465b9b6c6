package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jrsteele09/go-dashboard-session/exchange"
	"github.com/jrsteele09/go-dashboard-session/exchange/authflow"
	"github.com/jrsteele09/go-dashboard-session/identity"
	"github.com/jrsteele09/go-dashboard-session/internal/config"
	"github.com/jrsteele09/go-dashboard-session/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var overrides config.Overrides

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(config.WithOverrides(config.New(), overrides))
	},
}

func init() {
	serveCmd.Flags().StringVarP(&overrides.Port, "port", "p", "", "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&overrides.DataFolder, "data", "", "data folder (overrides FOLDER)")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("stack", string(debug.Stack())).Msgf("Recovered from panic: %v", r)
			returnError = errors.New("panic recovered")
		}
	}()

	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	flows, closeFlows, err := newAuthFlowRepo(c)
	if err != nil {
		return err
	}
	defer closeFlows()

	handler, err := newServer(context.Background(), c, flows)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newServer(ctx context.Context, c config.Config, flows authflow.Repo) (*server.Server, error) {
	if c.GetIssuerURL() == "" {
		return nil, errors.New("IDENTITY_ISSUER must be set")
	}
	httpClient := &http.Client{Timeout: c.GetIdentityTimeout()}

	provider, err := identity.NewProvider(ctx, c.GetIssuerURL(), httpClient)
	if err != nil {
		return nil, err
	}

	var identityClient identity.Client = identity.NewOIDCClient(provider, httpClient)
	if profileURL := c.GetProfileURL(); profileURL != "" {
		identityClient = identity.NewHTTPClient(profileURL, httpClient)
	}

	exchanger := exchange.NewOAuth2Exchanger(&oauth2.Config{
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		Endpoint:     provider.Endpoint(),
		RedirectURL:  c.GetBaseURL() + server.RouteAuthCallback,
		Scopes:       c.GetScopes(),
	}, flows, c.GetAuthFlowTTL(), exchange.WithHTTPClient(httpClient))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, err := server.New(c, identityClient, exchanger,
		server.WithLoginFlow(exchanger),
		server.WithRegistry(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("server.New: %w", err)
	}
	return s, nil
}

func newAuthFlowRepo(c config.Config) (authflow.Repo, func() error, error) {
	switch c.GetAuthFlowStore() {
	case config.AuthFlowStoreMemory:
		return authflow.NewInMemoryRepo(), func() error { return nil }, nil
	case config.AuthFlowStoreBolt:
		if err := os.MkdirAll(c.GetDataFolder(), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		repo, err := authflow.NewBoltRepoFromFile(filepath.Join(c.GetDataFolder(), "authflow.db"), nil)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown AUTHFLOW_STORE %q", c.GetAuthFlowStore())
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
