// Command wordgrid starts the multiplayer word grid server.
//
// It supports two modes:
//  1. "serve" (default) - runs the HTTP server exposing the WebSocket game
//     endpoint, the REST API, static files and an /mcp HTTP endpoint
//  2. "mcp" - runs an MCP stdio server against a running server, or against
//     an internal one when none answers
//
// Flags (each with an environment fallback) control host/port, the word list,
// the preset directory, debug logging and optional ngrok tunneling for easy
// external access during development. The /mcp endpoint and the operator API
// routes answer loopback clients only, unless --operator-token is set, in
// which case they require that bearer token.
package main

import (
	"context"
	"encoding/json"
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
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/wordgrid/api"
	"github.com/wricardo/mcp-training/wordgrid/game/config"
	"github.com/wricardo/mcp-training/wordgrid/game/dictionary"
	"github.com/wricardo/mcp-training/wordgrid/game/service"
	"github.com/wricardo/mcp-training/wordgrid/game/session"
	"github.com/wricardo/mcp-training/wordgrid/internal/logger"
	"github.com/wricardo/mcp-training/wordgrid/transport/mcp"
	"github.com/wricardo/mcp-training/wordgrid/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Word Grid Server"
)

// options holds the resolved command line configuration
type options struct {
	host          string
	port          int
	configDir     string
	preset        string
	dictionary    string
	staticDir     string
	debug         bool
	minPlayers    int
	tickInterval  time.Duration
	sweepInterval time.Duration
	apiURL        string
	ngrok         bool
	ngrokAuth     string
	ngrokDomain   string
	operatorToken string
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:          cmd.String("host"),
		port:          cmd.Int("port"),
		configDir:     cmd.String("config-dir"),
		preset:        cmd.String("preset"),
		dictionary:    cmd.String("dictionary"),
		staticDir:     cmd.String("static-dir"),
		debug:         cmd.Bool("debug"),
		minPlayers:    cmd.Int("min-players"),
		tickInterval:  cmd.Duration("tick"),
		sweepInterval: cmd.Duration("sweep-interval"),
		apiURL:        cmd.String("api-url"),
		ngrok:         cmd.Bool("ngrok"),
		ngrokAuth:     cmd.String("ngrok-auth"),
		ngrokDomain:   cmd.String("ngrok-domain"),
		operatorToken: cmd.String("operator-token"),
	}
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

// services is the wired object graph shared by both modes
type services struct {
	logger   zerolog.Logger
	sessions *session.Manager
	presets  *config.Manager
	hub      *websocket.Hub
	router   *service.Router
	api      *api.Server
}

// initializeServices loads the word list and presets and wires the session
// manager, event router, WebSocket hub and REST API together.
func initializeServices(opts options, log zerolog.Logger) (*services, error) {
	presets, err := config.NewManager(opts.configDir, log.With().Str("component", "config").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if opts.preset != "" {
		if err := presets.SetDefault(opts.preset); err != nil {
			return nil, fmt.Errorf("failed to select preset %q: %w", opts.preset, err)
		}
	}

	words := dictionary.Load(opts.dictionary, log.With().Str("component", "dictionary").Logger())

	sessions := session.NewManager(
		session.WithTickInterval(opts.tickInterval),
		session.WithMinPlayers(opts.minPlayers),
		session.WithLogger(log.With().Str("component", "sessions").Logger()),
	)

	hub := websocket.NewHub(log.With().Str("component", "hub").Logger())
	router := service.NewRouter(sessions, words, hub, presets,
		service.WithRouterLogger(log.With().Str("component", "router").Logger()))
	hub.SetDispatcher(router)

	return &services{
		logger:   log,
		sessions: sessions,
		presets:  presets,
		hub:      hub,
		router:   router,
		api: api.NewServer(sessions, router, presets, hub, log.With().Str("component", "api").Logger(),
			api.WithOperatorToken(opts.operatorToken)),
	}, nil
}

// start launches the hub loop and the reclamation sweep
func (s *services) start(ctx context.Context, sweepInterval time.Duration) {
	go s.hub.Run()
	go sweepRoutine(ctx, s.router, sweepInterval)
}

// stop closes every connection and cancels every running countdown
func (s *services) stop() {
	s.hub.Stop()
	s.sessions.Close()
}

// sweepRoutine periodically removes finished and abandoned sessions
func sweepRoutine(ctx context.Context, router *service.Router, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			router.Sweep()
		}
	}
}

// mountMCP serves the MCP tools at POST /mcp as an operator route. The
// tools call the REST API at baseURL.
func (s *services) mountMCP(baseURL, token string) {
	client := mcp.NewClient(baseURL, mcp.WithToken(token))
	s.api.Router().Handle("/mcp", s.api.Operator(mcpHandler(client))).Methods("POST")
}

// mcpHandler serves single JSON-RPC MCP messages over HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with the WebSocket hub, REST API and
// an /mcp proxy endpoint. If ngrok is enabled it also provisions a public
// tunnel.
func runHTTPServer(ctx context.Context, opts options, log zerolog.Logger) error {
	svc, err := initializeServices(opts, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	svc.start(ctx, opts.sweepInterval)
	defer svc.stop()

	addr := opts.addr()
	svc.mountMCP(fmt.Sprintf("http://%s", addr), opts.operatorToken)
	svc.api.ServeStatic(opts.staticDir)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      svc.api,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("websocket", fmt.Sprintf("ws://%s/ws", addr)).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	if opts.ngrok {
		if opts.operatorToken == "" {
			log.Warn().Msg("no operator token set: /mcp and operator API routes refuse tunnel traffic (use --operator-token)")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, opts, svc.api, log)
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	default:
		return nil
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, opts options, handler http.Handler, log zerolog.Logger) {
	if opts.ngrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Info().Str("domain", opts.ngrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Str("websocket", url+"/ws").
		Str("mcp", url+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// apiAvailable reports whether a server answers the health check at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// one answers; otherwise it starts an internal HTTP API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, opts options, log zerolog.Logger) error {
	baseURL := opts.apiURL

	if apiAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("using external API server for MCP")
	} else {
		log.Info().Str("url", baseURL).Msg("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(opts, log)
		if err != nil {
			return err
		}
		svc.start(ctx, opts.sweepInterval)
		defer svc.stop()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: svc.api}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("internal HTTP server started")
	}

	mcpClient := mcp.NewClient(baseURL, mcp.WithToken(opts.operatorToken))
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "wordgrid",
		Usage:   "multiplayer word grid game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "preset",
				Usage:   "preset used when a game is created without one",
				Sources: cli.EnvVars("DEFAULT_PRESET"),
			},
			&cli.StringFlag{
				Name:    "dictionary",
				Value:   "words.txt",
				Usage:   "word list, one word per line",
				Sources: cli.EnvVars("DICTIONARY_PATH"),
			},
			&cli.StringFlag{
				Name:    "static-dir",
				Value:   "./static/",
				Usage:   "directory served at /",
				Sources: cli.EnvVars("STATIC_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.IntFlag{
				Name:    "min-players",
				Value:   session.DefaultMinPlayers,
				Usage:   "participants needed to start a game",
				Sources: cli.EnvVars("MIN_PLAYERS"),
			},
			&cli.DurationFlag{
				Name:    "tick",
				Value:   session.DefaultTickInterval,
				Usage:   "countdown tick interval",
				Sources: cli.EnvVars("TICK_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "sweep-interval",
				Value:   10 * time.Minute,
				Usage:   "how often expired sessions are reclaimed",
				Sources: cli.EnvVars("SWEEP_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "API server the MCP stdio mode connects to",
				Sources: cli.EnvVars("API_URL"),
			},
			&cli.StringFlag{
				Name:    "operator-token",
				Usage:   "bearer token for /mcp and the operator API routes; without it they only answer loopback clients",
				Sources: cli.EnvVars("OPERATOR_TOKEN"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel (operator routes need --operator-token to be reachable through it)",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run the HTTP server with WebSocket, REST API and MCP endpoint (default)",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := optionsFrom(cmd)
					return runStdioMCP(ctx, opts, logger.Setup(opts.debug))
				},
			},
		},
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log := logger.Setup(opts.debug)
	log.Info().Str("version", Version).Msg("starting " + AppName)
	return runHTTPServer(ctx, opts, log)
}

// main loads .env, then runs the selected mode until SIGINT or SIGTERM
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
