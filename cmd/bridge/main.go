package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"binance-webhook-bridge/internal/config"
	"binance-webhook-bridge/internal/exchange/binance"
	"binance-webhook-bridge/internal/gate"
	"binance-webhook-bridge/internal/logger"
	"binance-webhook-bridge/internal/monitoring"
	"binance-webhook-bridge/internal/notifications"
	"binance-webhook-bridge/internal/server"
	"binance-webhook-bridge/internal/trader"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up logging")
	}

	printStartupInfo(cfg)

	client := binance.NewClient(binance.Config{
		APIKey:  cfg.Exchange.APIKey,
		Secret:  cfg.Exchange.Secret,
		BaseURL: cfg.Exchange.BaseURL,
		Testnet: cfg.Exchange.Testnet,
	})

	session := gate.NewSession()
	if cfg.Session.StateFile != "" {
		session, err = gate.NewPersistentSession(gate.NewStore(cfg.Session.StateFile), func(saveErr error) {
			log.WithError(saveErr).Warn("failed to persist session baseline")
		})
		if err != nil {
			log.WithError(err).Fatal("failed to restore session state")
		}
	}
	safetyGate := gate.New(gate.Config{
		MaxDrawdownPct: cfg.Session.MaxDrawdownPct,
		MaxProfitPct:   cfg.Session.MaxProfitPct,
		DustThreshold:  cfg.Trading.DustThreshold,
		Rules: gate.Rules{
			DrawdownCap:      cfg.Session.EnableDrawdownCap,
			ProfitCap:        cfg.Session.EnableProfitCap,
			PositionConflict: cfg.Session.EnablePositionCheck,
		},
	}, session)

	dispatcher := trader.New(client, safetyGate, trader.Config{
		QuoteAsset:      cfg.Trading.QuoteAsset,
		MinNotional:     cfg.Trading.MinNotional,
		TargetProfitPct: cfg.Trading.TargetProfitPct,
	}, log)

	var notifier notifications.Notifier
	if cfg.Notifications.TelegramToken != "" && cfg.Notifications.TelegramChatID != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
		log.Info("telegram notifications enabled")
	}

	health := monitoring.NewHealthChecker()
	srv := server.New(dispatcher, health, notifier, server.Config{
		RateLimit: cfg.Server.RateLimit,
	}, log)

	go startMetricsServer(cfg, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("webhook server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("webhook server error")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	log.Info("bridge stopped")
}

func startMetricsServer(cfg *config.Config, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())

	log.WithField("port", cfg.Server.MetricsPort).Info("metrics server listening")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.MetricsPort), mux); err != nil {
		log.WithError(err).Error("metrics server error")
	}
}

// printStartupInfo prints the effective configuration at boot. Secrets are
// never printed.
func printStartupInfo(cfg *config.Config) {
	endpoint := "mainnet"
	if cfg.Exchange.Testnet {
		endpoint = "testnet"
	}
	if cfg.Exchange.BaseURL != "" {
		endpoint = cfg.Exchange.BaseURL
	}

	takeProfit := "disabled"
	if cfg.Trading.TargetProfitPct > 0 {
		takeProfit = fmt.Sprintf("%.2f%%", cfg.Trading.TargetProfitPct)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("WEBHOOK BRIDGE")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Environment", cfg.Environment},
		{"Exchange", fmt.Sprintf("binance (%s)", endpoint)},
		{"Quote asset", cfg.Trading.QuoteAsset},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Max drawdown", fmt.Sprintf("%.2f%% (enabled=%t)", cfg.Session.MaxDrawdownPct, cfg.Session.EnableDrawdownCap)},
		{"Max profit", fmt.Sprintf("%.2f%% (enabled=%t)", cfg.Session.MaxProfitPct, cfg.Session.EnableProfitCap)},
		{"Position check", fmt.Sprintf("%t", cfg.Session.EnablePositionCheck)},
		{"Take profit", takeProfit},
		{"Min notional", fmt.Sprintf("%.2f %s", cfg.Trading.MinNotional, cfg.Trading.QuoteAsset)},
	})
	t.AppendSeparator()
	rateLimit := "disabled"
	if cfg.Server.RateLimit > 0 {
		rateLimit = fmt.Sprintf("%d req/s", cfg.Server.RateLimit)
	}
	notify := "disabled"
	if cfg.Notifications.TelegramToken != "" && cfg.Notifications.TelegramChatID != "" {
		notify = "telegram"
	}
	t.AppendRows([]table.Row{
		{"Webhook port", cfg.Server.Port},
		{"Metrics port", cfg.Server.MetricsPort},
		{"Rate limit", rateLimit},
		{"Notifications", notify},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}
