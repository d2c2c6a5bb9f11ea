package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pushchain/memo-clients/memoClient/client"
	"github.com/pushchain/memo-clients/memoClient/config"
	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/pushchain/memo-clients/memoClient/db"
	"github.com/pushchain/memo-clients/memoClient/ledger"
	"github.com/pushchain/memo-clients/memoClient/logger"
	"github.com/pushchain/memo-clients/memoClient/metrics"
)

// appEnv is the per-invocation state shared by every command: config,
// logger and manifest are resolved before the command runs; the ledger
// connections and run log are opened on first use.
type appEnv struct {
	home     string
	logLevel int

	cfg      config.Config
	logger   zerolog.Logger
	manifest *config.Manifest
	metrics  *metrics.Metrics

	// Guards ledgers and runLog; batch-mint workers dial concurrently.
	mu      sync.Mutex
	ledgers []*ledger.Client
	runLog  *db.DB
}

func (e *appEnv) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(e.home)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg, os.Getenv); err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		if e.logLevel < 0 || e.logLevel > 5 {
			return fmt.Errorf("--log-level must be between 0 and 5")
		}
		cfg.LogLevel = e.logLevel
	}
	e.cfg = cfg
	e.logger = logger.Init(cfg)
	e.manifest = config.ResolveManifest(e.logger)
	e.metrics = metrics.New()
	return nil
}

func (e *appEnv) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, l := range e.ledgers {
		l.Close()
	}
	e.ledgers = nil
	if e.runLog != nil {
		if err := e.runLog.Close(); err != nil {
			e.logger.Warn().Err(err).Msg("failed to close run log")
		}
		e.runLog = nil
	}
}

// endpoints splits a comma separated RPC_URL into failover endpoints.
func (e *appEnv) endpoints() []string {
	var out []string
	for _, u := range strings.Split(e.manifest.Endpoint(), ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (e *appEnv) dial(ctx context.Context) (*ledger.Client, error) {
	l, err := ledger.Dial(ctx, e.endpoints(), e.logger)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.ledgers = append(e.ledgers, l)
	e.mu.Unlock()
	return l, nil
}

func (e *appEnv) openRunLog() (client.RunLog, error) {
	if !e.cfg.RunLogEnabled {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runLog == nil {
		d, err := db.OpenFileDB(e.cfg.RunLogDir, constant.RunLogFileName, true)
		if err != nil {
			return nil, err
		}
		e.runLog = d
	}
	return e.runLog, nil
}

// signer loads the programs and wallet every chain command needs.
func (e *appEnv) signer() (config.Programs, solana.PrivateKey, error) {
	programs, err := e.manifest.Programs()
	if err != nil {
		if mErr := e.manifest.Err(); mErr != nil {
			return config.Programs{}, nil, fmt.Errorf("%w (manifest: %v)", err, mErr)
		}
		return config.Programs{}, nil, err
	}
	wallet, err := client.LoadWallet(e.manifest.WalletPath())
	if err != nil {
		return config.Programs{}, nil, err
	}
	return programs, wallet, nil
}

// client builds an operation client over a fresh ledger connection.
func (e *appEnv) client(ctx context.Context) (*client.Client, error) {
	programs, wallet, err := e.signer()
	if err != nil {
		return nil, err
	}
	return e.clientFor(ctx, programs, wallet, e.logger)
}

func (e *appEnv) clientFor(ctx context.Context, programs config.Programs, wallet solana.PrivateKey, log zerolog.Logger) (*client.Client, error) {
	l, err := e.dial(ctx)
	if err != nil {
		return nil, err
	}
	runLog, err := e.openRunLog()
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("endpoint", strings.Join(l.Endpoints(), ",")).
		Str("program_env", e.manifest.ProgramEnv()).
		Msg("client ready")
	return client.New(e.cfg, programs, wallet, l, client.Options{Observer: e.metrics, RunLog: runLog}, log), nil
}
