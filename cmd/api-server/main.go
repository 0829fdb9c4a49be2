package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/coinpay/coinpay-api/pkg/app/http"
	"github.com/coinpay/coinpay-api/pkg/app/httpserver"
	"github.com/coinpay/coinpay-api/pkg/auth"
	"github.com/coinpay/coinpay-api/pkg/config"
	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/dex/fixture"
	"github.com/coinpay/coinpay-api/pkg/dex/oneinch"
	"github.com/coinpay/coinpay-api/pkg/pgutil"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/service"
	"github.com/coinpay/coinpay-api/pkg/swap/store/pg"
	"github.com/coinpay/coinpay-api/pkg/wallet"
	"github.com/coinpay/coinpay-api/pkg/wallet/evm"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting swap API server",
		zap.String("config", *configPath),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("mock_mode", cfg.OneInch.UseMockMode))

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database))

	registry := dex.NewRegistry()
	registry.Register(oneinch.ProviderName, func() (dex.Aggregator, error) {
		if cfg.OneInch.UseMockMode {
			return fixture.New(), nil
		}
		return oneinch.NewClient(oneinch.Options{
			BaseURL: cfg.OneInch.APIBaseURL,
			ChainID: cfg.OneInch.ChainID,
			APIKey:  cfg.OneInch.APIKey,
		}, logger)
	})

	aggregator, err := registry.Build(cfg.Swap.DefaultProvider)
	if err != nil {
		logger.Fatal("Failed to build DEX aggregator", zap.Error(err))
	}
	logger.Info("DEX aggregator ready", zap.String("provider", aggregator.Name()))

	var balances wallet.BalanceProvider
	if cfg.OneInch.UseMockMode {
		balances = wallet.NewStaticProvider()
	} else {
		provider, err := evm.NewProvider(cfg.Wallet.RPCURL, cfg.Wallet.CallTimeout, logger)
		if err != nil {
			logger.Fatal("Failed to connect to the EVM RPC node", zap.Error(err))
		}
		defer provider.Close()
		balances = provider
	}

	feePct, err := cfg.Swap.FeePercentage()
	if err != nil {
		logger.Fatal("Invalid platform fee configuration", zap.Error(err))
	}
	feeCfg := swap.DefaultFeeConfig()
	feeCfg.Percentage = feePct

	collector := service.NewFeeCollector(cfg.Swap.FeeQueueSize,
		service.LogSink{Logger: logger}, logger)
	collector.Start()
	defer collector.Stop()

	svc := service.New(
		service.Config{
			Fees:            feeCfg,
			QuoteTTL:        cfg.Swap.QuoteTTL,
			TreasuryAddress: cfg.Treasury.WalletAddress,
		},
		aggregator,
		pg.NewStore(db),
		balances,
		service.MockSubmitter{},
		nil,
		collector,
		logger,
	)

	validator := auth.NewValidator(cfg.Auth.SigningKey, cfg.Auth.Issuer, logger)
	handler := service.NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/swap", func(r chi.Router) {
		r.Use(validator.Middleware)
		handler.Routes(r)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpserver.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
