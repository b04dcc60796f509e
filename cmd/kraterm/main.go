package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kraterm/config"
	"kraterm/internal/agentbridge"
	"kraterm/internal/auth"
	"kraterm/internal/bus"
	"kraterm/internal/creds"
	"kraterm/internal/metrics"
	"kraterm/internal/risk"
	"kraterm/internal/rpc"
	"kraterm/internal/state"
	"kraterm/internal/wsconn"
	"kraterm/logger"
	"kraterm/models"
)

func main() {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Kraterm.Name,
		"env":     config.AppEnvironment(),
	}).Info("starting kraterm")

	metrics.Init(cfg.Metrics.ListenAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Logging.Level == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	eventBus := bus.New(cfg.Channels.BusBuffer, cfg.Channels.CommandBuffer)
	defer eventBus.Close()

	credLoader := creds.NewEnvLoader("KRAKEN_API_KEY", "KRAKEN_API_SECRET")
	initialCreds, err := credLoader.Load()
	if err != nil {
		log.WithError(err).Error("failed to load credentials")
		os.Exit(1)
	}
	credHandle := creds.NewHandle(initialCreds)
	credentialsConfigured := !initialCreds.IsZero()
	if !credentialsConfigured {
		log.Warn("no API credentials configured at startup; private session and agent are not started in this run, and credentials supplied later do not start them")
	}

	hardLimits, err := risk.LoadHardLimits(cfg.Risk.HardLimitsPath)
	if err != nil {
		log.WithError(err).Warn("failed to load hard risk limits, refusing all orders until fixed")
		hardLimits = risk.Config{}
	}
	guard := risk.NewGuard(hardLimits)
	if agentLimits, err := risk.LoadAgentLimits(cfg.Risk.AgentLimitsPath); err == nil {
		guard.SetConfig(agentLimits)
	}

	appState := state.New(cfg.Book.MaxLevelsPerSide, cfg.Book.ChecksumDepth, cfg.Book.MaxResyncAttempts, cfg.Book.ResyncCooldown)

	agentHandle := agentbridge.NewHandle(cfg.Agent.Command, cfg.Agent.TickerThrottle, cfg.Agent.OutputLineCeiling, eventBus)

	var authManager *auth.Manager
	if credentialsConfigured {
		authManager = auth.NewManager(cfg.Exchange.RESTBaseURL, credHandle, cfg.Auth.WarningAfter, cfg.Auth.RefreshAfter, cfg.Auth.HardExpiry, func(snap auth.Snapshot) {
			eventBus.SendMessage(bus.Message{Kind: bus.MessageTokenState, Payload: snap.State})
		}, func() {
			eventBus.SendCommand(bus.ConnectionCommand{Kind: bus.CommandTokenExpired})
		})
	}

	tokenFn := func() string {
		if authManager == nil {
			return ""
		}
		snap := authManager.Snapshot()
		if snap.State == auth.StateUnavailable {
			return ""
		}
		return snap.Token
	}

	var rpcClient *rpc.Client
	connManager := wsconn.New(cfg.Exchange.WSPublicURL, cfg.Exchange.WSPrivateURL, 30*time.Second, tokenFn, func(session string, env models.Envelope) {
		rpcClient.Handle(session, env)
	}, eventBus)
	rpcClient = rpc.NewClient(connManager, eventBus, cfg.Exchange.Simulate)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		connManager.Run(ctx)
	}()

	if authManager != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := authManager.Run(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("auth manager stopped")
			}
		}()
	}

	if credentialsConfigured {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := agentHandle.Start(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("agent subprocess exited with error")
			}
		}()
		agentHandle.SendActivePairs(cfg.Symbols)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runDriver(ctx, eventBus, appState, rpcClient, agentHandle, guard, authManager, credHandle, log, cfg.Symbols, cfg.Book.ResyncDepth, cfg.Risk.AgentLimitsPath)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")

	eventBus.SendCommand(bus.ConnectionCommand{Kind: bus.CommandShutdown})
	agentHandle.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("graceful shutdown completed")
	case <-time.After(15 * time.Second):
		log.Warn("graceful shutdown timeout exceeded")
	}

	log.WithFields(logger.Fields{
		"input_tokens":  appState.Agent.InputTokens,
		"output_tokens": appState.Agent.OutputTokens,
		"estimated_cost_usd": appState.Agent.EstimatedCost(
			cfg.Agent.TokenInputCost, cfg.Agent.TokenOutputCost,
		),
	}).Info("kraterm stopped")
}
