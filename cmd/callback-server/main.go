package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
	"github.com/issuer-networks/wallet-callback/internal/config"
	"github.com/issuer-networks/wallet-callback/internal/keyfetch"
	"github.com/issuer-networks/wallet-callback/internal/logger"
	"github.com/issuer-networks/wallet-callback/internal/server"
	"github.com/issuer-networks/wallet-callback/internal/server/handlers"
	"github.com/issuer-networks/wallet-callback/internal/version"
)

//	@title			callback-server
//	@description	callback-server verifies signed wallet callback payloads (class save / delete events) on behalf of an issuer.
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	## Request Limits
//	@description	All endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 1MB
//	@description
//	@description	Check the X-Max-Request-Size response header for the configured limit.
//	@description
//	@description	## Authentication & Authorization
//	@description
//	@description	The callback endpoint does not require credentials: the sender is
//	@description	authenticated by the ECDSA signature chain on the payload itself.
//	@description	Payloads that do not verify against the published root keys are rejected.
//	@description
//	@license.name	MIT

//	@servers.url			https://callbacks.example.com
//	@servers.description	Production server
//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Callbacks
//	@tag.description	Callback verification endpoints

//	@tag.name			Common
//	@tag.description	Server API endpoints (health, version, etc.)

func main() {
	cmd := &cobra.Command{
		Use:   "callback-server",
		Short: "Wallet callback verification server",
		Long:  `callback-server receives signed wallet callback payloads and verifies their signature chain, expiry and recipient binding`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("RECIPIENT_ID", cfg.RecipientID),
		slog.String("TRUST_ANCHOR_URL", cfg.TrustAnchorURL),
		slog.String("TRUST_ANCHOR_FORMAT", cfg.TrustAnchorFormat),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	anchors, refresher, err := buildAnchorSource(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to configure trust-anchor source", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// warm the anchor cache so the first callback does not pay the fetch
	// latency; a failure here is logged, not fatal - the endpoint may be
	// temporarily unreachable at boot
	if refresher != nil {
		warmCtx, cancel := context.WithTimeout(ctx, cfg.TrustAnchorFetchTimeout)
		if _, err := refresher.ForceRefresh(warmCtx); err != nil {
			appLogger.Warn("initial trust-anchor fetch failed", slog.String("error", err.Error()))
		}
		cancel()
	}

	service := &callbacksig.Service{
		Anchors:     anchors,
		RecipientID: cfg.RecipientID,
		Now:         time.Now,
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	srv := server.NewServer(cfg, appLogger, service, refresher)

	if err := srv.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}

// buildAnchorSource assembles the trust-anchor pipeline for the
// configured format. The rootkeys format gets a TTL cache (which also
// provides the forced-refresh retry); the jwks format refreshes itself
// in the background, so no extra cache layer is added.
func buildAnchorSource(ctx context.Context, cfg *config.ServerEnvironment, appLogger *slog.Logger) (callbacksig.TrustAnchorSource, handlers.AnchorRefresher, error) {
	switch cfg.TrustAnchorFormat {
	case config.AnchorFormatRootKeys:
		source, err := keyfetch.NewHTTPSource(cfg.TrustAnchorURL, cfg.TrustAnchorFetchTimeout, appLogger)
		if err != nil {
			return nil, nil, err
		}
		cache, err := keyfetch.NewCache(source, cfg.TrustAnchorCacheTTL, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return cache, cache, nil

	case config.AnchorFormatJWKS:
		source, err := keyfetch.NewJWKSSource(ctx, cfg.TrustAnchorURL, cfg.JWKSMinRefresh, cfg.JWKSMaxRefresh, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return source, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown trust anchor format: %s", cfg.TrustAnchorFormat)
	}
}
