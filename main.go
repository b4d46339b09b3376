// Command marsrover starts the Mars Rover fleet server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Configuration is layered: defaults, an optional YAML file (--config),
// ROVER_* environment variables (a .env file is loaded first) and flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mars-rover/api"
	"github.com/wricardo/mars-rover/config"
	"github.com/wricardo/mars-rover/observability/metrics"
	"github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/rover/service"
	"github.com/wricardo/mars-rover/rover/store"
	"github.com/wricardo/mars-rover/transport/mcp"
	"github.com/wricardo/mars-rover/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Mars Rover Fleet Server"
)

// main loads .env and runs the CLI.
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		zlog.Fatal().Err(err).Msg("marsrover failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "marsrover",
		Usage:   AppName,
		Version: Version,
		Flags:   configFlags(),
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with REST API, WebSocket, metrics and /mcp",
				Action:  serverAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by the REST API",
				Action:  stdioMCPAction,
			},
		},
		Action: serverAction,
	}
}

// configFlags are the flags that override file and environment configuration
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to a YAML config file", Sources: cli.EnvVars("ROVER_CONFIG")},
		&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
		&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		&cli.StringFlag{Name: "store", Usage: "store driver: memory, file, sqlite or postgres"},
		&cli.StringFlag{Name: "data-dir", Usage: "data directory for the file store"},
		&cli.StringFlag{Name: "dsn", Usage: "SQLite path or PostgreSQL URL"},
		&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
	}
}

// configFromCommand resolves configuration and applies explicitly set flags
func configFromCommand(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("store") {
		cfg.Store.Driver = cmd.String("store")
	}
	if cmd.IsSet("data-dir") {
		cfg.Store.DataDir = cmd.String("data-dir")
	}
	if cmd.IsSet("dsn") {
		cfg.Store.DSN = cmd.String("dsn")
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	return cfg, cfg.Validate()
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, os.Stdout, runHTTPServer)
}

// stdioMCPAction logs to stderr; stdout carries the MCP protocol
func stdioMCPAction(ctx context.Context, cmd *cli.Command) error {
	return run(ctx, cmd, os.Stderr, runStdioMCPWithInternalServer)
}

type runner func(ctx context.Context, cfg config.Config, roverService service.RoverService) error

func run(ctx context.Context, cmd *cli.Command, logOut io.Writer, fn runner) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	ctx, closeLog := log.NewContextWithWriter(ctx, logOut, cfg.Debug)
	defer closeLog()

	log.FromCtx(ctx).Info().
		Str("version", Version).
		Str("mode", cmd.Name).
		Str("store", cfg.Store.Driver).
		Msgf("Starting %s", AppName)

	roverService, closeStore, err := initializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer closeStore()

	return fn(ctx, cfg, roverService)
}

// initializeServices opens the configured store, registers metrics and
// builds the rover service.
func initializeServices(ctx context.Context, cfg config.Config) (service.RoverService, func() error, error) {
	roverStore, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	metrics.Init()
	metrics.SetFleetSizeFunc(func() int {
		listCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		rovers, err := roverStore.List(listCtx)
		if err != nil {
			return 0
		}
		return len(rovers)
	})

	return service.NewRoverService(roverStore), closeStore, nil
}

// newHandler wires the API server, WebSocket hub and /mcp endpoint
func newHandler(ctx context.Context, roverService service.RoverService, baseURL string) http.Handler {
	logger := *log.FromCtx(ctx)

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	apiServer := api.NewServer(roverService, hub, logger)
	apiServer.Handle("/mcp", mcp.NewClient(baseURL, Version).HTTPHandler())

	return apiServer
}

// runHTTPServer starts the HTTP server and, if enabled, an ngrok tunnel.
// It returns after SIGINT/SIGTERM and a graceful shutdown.
func runHTTPServer(ctx context.Context, cfg config.Config, roverService service.RoverService) error {
	logger := log.FromCtx(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr()
	handler := newHandler(ctx, roverService, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		logger.Info().Msgf("REST API: http://%s/api/rovers", addr)
		logger.Info().Msgf("WebSocket: ws://%s/ws?rover=<id>", addr)
		logger.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg.Ngrok, handler)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down...")
	case err = <-serverErr:
		logger.Error().Err(err).Msg("HTTP server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	logger.Info().Msg("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, cfg config.NgrokConfig, handler http.Handler) {
	logger := log.FromCtx(ctx)

	if cfg.AuthToken == "" {
		logger.Warn().Msg("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or ROVER_NGROK_AUTHTOKEN)")
		return
	}

	logger.Info().Msg("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info().Str("domain", cfg.Domain).Msg("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start ngrok tunnel")
		return
	}

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tunnelServer.Shutdown(shutdownCtx)
	}()

	ngrokURL := tun.URL()
	logger.Info().Str("url", ngrokURL).Msg("Ngrok tunnel established")
	logger.Info().Msgf("  REST API (ngrok): %s/api/rovers", ngrokURL)
	logger.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("Ngrok server error")
	}
	logger.Info().Msg("Ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured address; if unavailable,
// it starts an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg config.Config, roverService service.RoverService) error {
	logger := log.FromCtx(ctx)

	externalURL := fmt.Sprintf("http://%s", cfg.Addr())
	baseURL, err := resolveBaseURL(ctx, externalURL, func(listener net.Listener) string {
		internalURL := fmt.Sprintf("http://%s", listener.Addr())
		httpServer := &http.Server{Handler: newHandler(ctx, roverService, internalURL)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Internal HTTP server error")
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
		return internalURL
	})
	if err != nil {
		return err
	}

	mcpClient := mcp.NewClient(baseURL, Version)
	logger.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// resolveBaseURL returns externalURL when a server answers its health check,
// otherwise it listens on a loopback port and hands the listener to serve.
func resolveBaseURL(ctx context.Context, externalURL string, serve func(net.Listener) string) (string, error) {
	logger := log.FromCtx(ctx)
	logger.Info().Str("url", externalURL).Msg("Checking for external API server")

	if apiAvailable(ctx, externalURL) {
		logger.Info().Str("url", externalURL).Msg("External API server found, using it for MCP")
		return externalURL, nil
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}
	logger.Info().Str("addr", listener.Addr().String()).Msg("Starting internal HTTP server for MCP stdio")

	return serve(listener), nil
}

func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
