package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	bridgedconfig "github.com/openbridge-io/bridge-core/cmd/bridged/config"
	"github.com/openbridge-io/bridge-core/internal/bridge"
	"github.com/openbridge-io/bridge-core/internal/httpapi"
	"github.com/openbridge-io/bridge-core/internal/registry"
	"github.com/openbridge-io/bridge-core/internal/token"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	log.Infow("bridged",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := bridgedconfig.Load()
	if err != nil {
		log.Fatalw("failed to parse config", "error", err)
	}

	bank := token.NewBank()
	reg := registry.New(bank)

	ledger, err := bridge.New(cfg.Bridge, nil, bank, reg, log)
	if err != nil {
		log.Fatalw("failed to init custody ledger", "error", err)
	}
	defer ledger.Close()

	handler := httpapi.NewServer(ledger, log)

	addr := net.JoinHostPort(cfg.ListenHost, cfg.ListenPort)
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	log.Infow("serving bridge API",
		"addr", addr,
		"chain_id", cfg.Bridge.ChainID,
		"trusted_signer", cfg.Bridge.TrustedSigner.Hex(),
		"service_fee_wei", cfg.Bridge.ServiceFeeWei.String(),
	)

	go func() {
		if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
}
