// Package mcpserver exposes StreakedIn goals, tasks and suggestions as MCP tools.
package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streakedin/streakedin/internal/client"
)

// Config is read from STREAKEDIN_MCP_* variables.
type Config struct {
	APIURL          string        `envconfig:"API_URL" default:"http://localhost:8080"`
	Token           string        `envconfig:"TOKEN" default:""`
	ServerName      string        `envconfig:"SERVER_NAME" default:"streakedin-mcp"`
	ServerVersion   string        `envconfig:"SERVER_VERSION" default:"0.1.0"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	Transport       string        `envconfig:"TRANSPORT" default:"auto"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8090"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("STREAKEDIN_MCP", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseLogLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewServer builds the MCP server with every tool registered.
func NewServer(cfg *Config, c *client.Client) *server.MCPServer {
	s := server.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		server.WithToolCapabilities(true),
	)
	NewTools(c).Register(s)
	return s
}

// Run serves MCP over stdio or streamable HTTP until interrupted.
func Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(parseLogLevel(cfg.LogLevel))
	// stdout carries the stdio protocol
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", cfg.ServerName).Logger()

	var c *client.Client
	if cfg.Token == "" {
		log.Info().Str("api_url", cfg.APIURL).Msg("Creating client with dev mode")
		c = client.NewWithDevMode(cfg.APIURL, client.WithRetries(2))
	} else {
		c = client.New(cfg.APIURL, cfg.Token, client.WithRetries(2))
	}
	s := NewServer(cfg, c)

	if useStdio(cfg.Transport) {
		log.Info().Msg("Starting StreakedIn MCP server (stdio transport)")
		return server.ServeStdio(s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamSrv := server.NewStreamableHTTPServer(s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     streamSrv,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting StreakedIn MCP server (streamable HTTP)")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during HTTP server shutdown")
	}
	return streamSrv.Shutdown(shutdownCtx)
}

// useStdio honours an explicit transport, otherwise picks stdio when stdin is not a terminal.
func useStdio(transport string) bool {
	switch transport {
	case "stdio":
		return true
	case "http":
		return false
	}
	if fi, err := os.Stdin.Stat(); err == nil {
		return fi.Mode()&os.ModeCharDevice == 0
	}
	return false
}
