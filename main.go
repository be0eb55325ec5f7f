// Package main is the readiness gate fronting the production-sync
// workers: it waits until the message broker and the mail server accept
// TCP connections, then replaces itself with the worker entry command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/VladimirNagibin/bolashaq-production-sync/internal/config"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/gate"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/handoff"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/logger"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/probe"
)

// Exit codes. A successful hand-off never returns here: after exec the
// exit code belongs to the entry command.
const (
	exitFailure       = 1
	exitInvalidConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return exitInvalidConfig
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitFailure
	}
	defer func() { _ = log.Sync() }()

	g, err := buildGate(cfg, log)
	if err != nil {
		log.Error("failed to build gate", logger.Error(err))
		return exitInvalidConfig
	}

	// With no timeout configured the gate waits forever; SIGTERM from
	// the orchestrator is then the only way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := g.Await(ctx); err != nil {
		log.Error("gate failed", logger.Error(err))
		return exitFailure
	}

	command := cfg.Entry.Command
	log.Info("handing off to entry command", logger.String("command", strings.Join(command, " ")))

	// Flush before exec; buffered log output does not survive it.
	_ = log.Sync()

	if execErr := handoff.Exec(command, os.Environ()); execErr != nil {
		log.Error("failed to launch entry command", logger.Error(execErr))
		return exitFailure
	}

	// Not reached: exec replaced the process image.
	return 0
}

// loadConfig loads and validates configuration before any network activity.
func loadConfig(defaultPath string) (*config.Config, error) {
	cfg, err := config.Load(config.GetConfigPath(defaultPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// buildGate assembles the gate from validated configuration.
func buildGate(cfg *config.Config, log logger.Logger) (*gate.Gate, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	return gate.New(gate.Options{
		Targets: cfg.Targets(),
		Prober:  probe.TCPProber{Timeout: cfg.Gate.ConnectTimeout},
		Policy:  policy,
		Timeout: cfg.Gate.Timeout,
		Logger:  log,
	})
}
