package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	specpkg "github.com/privatechef/concierge/api"
	"github.com/privatechef/concierge/internal/access"
	"github.com/privatechef/concierge/internal/allowlist"
	"github.com/privatechef/concierge/internal/api"
	"github.com/privatechef/concierge/internal/catalog"
	"github.com/privatechef/concierge/internal/config"
	"github.com/privatechef/concierge/internal/metrics"
	"github.com/privatechef/concierge/internal/onchain"
	"github.com/privatechef/concierge/internal/registry"
	"github.com/privatechef/concierge/internal/wallet"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load tier catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}

	allow, err := loadAllowlist(cfg.AllowlistPath)
	if err != nil {
		slog.Error("failed to load allowlist", "error", err, "path", cfg.AllowlistPath)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	repo := initRegistry(startCtx, cfg)
	if repo != nil {
		defer repo.Close()
	}

	chain, contract := initChain(startCtx, cfg)
	if chain != nil {
		defer chain.Close()
	}

	rdb := initRedis(startCtx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	gatherer, recorder := metrics.NewRegistry()

	resolverCfg := access.Config{
		Allowlist: allow,
		Contract:  contract,
		Timeout:   cfg.OnchainTimeout,
		Metrics:   recorder,
	}
	deps := api.RouterDeps{
		Catalog:     cat,
		Metrics:     recorder,
		Gatherer:    gatherer,
		Redis:       rdb,
		RateLimit:   cfg.RateLimit,
		Version:     cfg.Version,
		OpenAPISpec: specpkg.OpenAPISpec,
	}
	// Assigned only when non-nil so the interfaces stay nil otherwise.
	if repo != nil {
		resolverCfg.Registry = repo
		deps.Registry = repo
	}
	if chain != nil {
		resolverCfg.Chain = chain
		deps.Chain = chain
	}
	deps.Resolver = access.NewResolver(resolverCfg)

	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting concierge server",
			"port", cfg.Port,
			"version", cfg.Version,
			"tiers", len(cat.Tiers()),
			"allowlistRecords", allow.Len(),
			"onchain", chain != nil,
			"rateLimit", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func loadAllowlist(path string) (*allowlist.List, error) {
	if path == "" {
		return allowlist.Default(), nil
	}
	return allowlist.LoadFile(path)
}

// initRegistry returns nil when the registry cannot be opened; resolution
// then skips it.
func initRegistry(ctx context.Context, cfg *config.Config) registry.Repository {
	repo, err := registry.Open(ctx, cfg.RegistryDriver, cfg.RegistryDSN)
	if err != nil {
		slog.Warn("holder registry unavailable; continuing without it", "error", err, "driver", cfg.RegistryDriver)
		return nil
	}
	if err := repo.Migrate(ctx); err != nil {
		slog.Warn("holder registry migration failed; continuing without it", "error", err)
		_ = repo.Close()
		return nil
	}
	return repo
}

func initChain(ctx context.Context, cfg *config.Config) (*onchain.Client, common.Address) {
	client, err := onchain.Dial(ctx, cfg.ChainRPCURL)
	if errors.Is(err, onchain.ErrNotConfigured) {
		slog.Info("on-chain verification disabled: CHAIN_RPC_URL is not set")
		return nil, common.Address{}
	}
	if err != nil {
		slog.Warn("on-chain client unavailable; continuing without it", "error", err)
		return nil, common.Address{}
	}

	addr, ok := wallet.Normalize(cfg.CollectibleContract)
	if !ok {
		slog.Warn("on-chain verification disabled: COLLECTIBLE_CONTRACT is not a valid address", "contract", cfg.CollectibleContract)
		client.Close()
		return nil, common.Address{}
	}
	return client, common.HexToAddress(addr)
}

func initRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		slog.Info("rate limiting disabled: REDIS_ADDR is not set")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable; rate limiting disabled", "error", err, "addr", cfg.RedisAddr)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
