package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"autotrader/internal/api"
	"autotrader/internal/config"
	"autotrader/internal/db"
	"autotrader/internal/ethereum"
	"autotrader/internal/external"
	"autotrader/internal/notifications"
	"autotrader/internal/repository"
	"autotrader/internal/scheduler"
	"autotrader/internal/trader"
)

const banner = `
╔══════════════════════════════════════╗
║        Auto Trader Backend v0.3      ║
║        autonomous DeFi trading       ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(bootCtx, pool); err != nil {
		bootCancel()
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}

	// Repos
	decisionRepo := repository.NewDecisionRepo(pool)
	executionRepo := repository.NewExecutionRepo(pool)
	holdingRepo := repository.NewHoldingRepo(pool)
	configRepo := repository.NewConfigRepo(pool)

	// Seed runtime config defaults on first boot
	if err := configRepo.Seed(bootCtx, map[string]string{
		"pulse_interval": strconv.Itoa(trader.DefaultPulseInterval),
		"max_trade_usd":  trader.DefaultMaxTradeUSD,
		"chain":          "base",
		"enabled":        "true",
		"weth_address":   cfg.WETHAddress,
	}); err != nil {
		bootCancel()
		fmt.Fprintf(os.Stderr, "[DB] Config seed failed: %v\n", err)
		os.Exit(1)
	}

	// External collaborators
	chain, err := ethereum.Dial(cfg.RPCURL)
	if err != nil {
		bootCancel()
		fmt.Fprintf(os.Stderr, "[CHAIN] Dial failed: %v\n", err)
		os.Exit(1)
	}
	defer chain.Close()

	quotes := external.NewZeroXClient(cfg.ZeroXAPIKey, cfg.ChainID)
	notify := notifications.NewSender(cfg.BackendURL, cfg.InternalToken)

	// Core coordinator
	coord := trader.New(
		decisionRepo, executionRepo, holdingRepo, configRepo,
		quotes, chain, notify,
		trader.Options{ChainID: cfg.ChainID, WETHAddress: cfg.WETHAddress},
	)

	// Pulse scheduler (one per process)
	sched := scheduler.NewPulseScheduler(configRepo, notify, scheduler.Options{
		InitialDelay: 10 * time.Second,
	})
	if enabled, err := configRepo.Get(bootCtx, "enabled", "true"); err == nil && strings.EqualFold(enabled, "true") {
		sched.Start()
	} else {
		fmt.Println("[PULSE] Trading disabled at boot, worker not started")
	}
	bootCancel()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// API server
	srv := api.NewServer(pool, coord, sched, cfg.Port, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
