package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carecall/care-gateway/config"
	httpx "github.com/carecall/care-gateway/internal/http"
)

const shutdownWaitTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config *config.AppConfig
	Auth   AuthServices
	Logger *slog.Logger
}

// StartHTTPServer creates and starts the gateway HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := buildHTTPHandler(cfg, logger)
	if err != nil {
		return nil, err
	}

	return startServer(logger, handler, cfg.Config.HTTP.Addr), nil
}

func buildHTTPHandler(cfg *HTTPServerConfig, logger *slog.Logger) (http.Handler, error) {
	proxy, err := httpx.NewBackendProxy(httpx.BackendProxyOptions{
		Upstream: cfg.Config.HTTP.BackendURL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build backend proxy: %w", err)
	}

	services := httpx.RouterServices{
		Login:        cfg.Auth.Login,
		Codec:        cfg.Auth.Codec,
		Proxy:        proxy,
		CookieDomain: cfg.Config.HTTP.CookieDomain,
		PrimaryHost:  cfg.Config.HTTP.PrimaryHost,
		Logger:       logger,
	}
	if cfg.Auth.OAuth != nil {
		services.OAuth = cfg.Auth.OAuth
		services.OAuthCallbackURL = cfg.Config.Auth.OAuth.RedirectURL
	}

	// Order: Recover -> Logging -> Router
	h := httpx.NewRouter(services)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)

	return h, nil
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then gracefully shuts the
// server down.
func WaitForShutdown(server *http.Server, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}
