// Package wire provides dependency injection for the foreman application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/example/foreman/internal/adapters/checker"
	"github.com/example/foreman/internal/adapters/ledger"
	"github.com/example/foreman/internal/adapters/planfile"
	"github.com/example/foreman/internal/adapters/sqlite"
	"github.com/example/foreman/internal/adapters/tmux"
	"github.com/example/foreman/internal/adapters/worker"
	"github.com/example/foreman/internal/app"
	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/db"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

var (
	planService         primary.PlanService
	ledgerService       primary.LedgerService
	orchestratorService primary.OrchestratorService
	sessionManager      secondary.SessionManager
	cfg                 *config.Config
	once                sync.Once
)

// PlanService returns the singleton PlanService instance.
func PlanService() primary.PlanService {
	once.Do(initServices)
	return planService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// OrchestratorService returns the singleton OrchestratorService instance.
func OrchestratorService() primary.OrchestratorService {
	once.Do(initServices)
	return orchestratorService
}

// Config returns the loaded configuration (defaults when no config file
// exists in the workspace).
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// SessionManager returns the tmux session manager, or an error when no
// tmux binary is available. Not a singleton: only the attach command
// needs it and failure must not break unrelated commands.
func SessionManager() (secondary.SessionManager, error) {
	if sessionManager != nil {
		return sessionManager, nil
	}
	adapter, err := tmux.NewAdapter()
	if err != nil {
		return nil, err
	}
	sessionManager = adapter
	return sessionManager, nil
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}

	cfg, err = config.LoadConfig(cwd)
	if err != nil {
		// No config file is fine: run with defaults until `foreman init`.
		cfg = config.DefaultConfig()
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	ledgerStore, err := ledger.NewJSONLStore(config.LedgerPath(cwd))
	if err != nil {
		log.Fatalf("failed to open ledger: %v", err)
	}

	// Create repository adapters (secondary ports)
	planRepo := sqlite.NewPlanRepository(database)
	workerProxy := worker.NewExecProxy(cfg.WorkerCommand, time.Duration(cfg.Policy.WorkerTimeoutSecs)*time.Second)
	criterionChecker := checker.NewExecChecker(time.Duration(cfg.Policy.CheckTimeoutSecs) * time.Second)

	// Create services (primary ports implementation)
	ledgerImpl := app.NewLedgerService(ledgerStore, cfg.Policy)
	verifier := app.NewVerifierService(criterionChecker, cfg.Policy)

	planService = app.NewPlanService(planRepo, planfile.NewLoader(), cfg.Policy)
	ledgerService = ledgerImpl
	orchestratorService = app.NewOrchestratorService(planRepo, ledgerImpl, workerProxy, verifier, cfg.Policy)
}
