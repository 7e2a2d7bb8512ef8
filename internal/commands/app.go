package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerly/internal/cashflow"
	"github.com/cleared-dev/ledgerly/internal/config"
	"github.com/cleared-dev/ledgerly/internal/ledger"
	"github.com/cleared-dev/ledgerly/internal/sqlstore"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// app is the wiring shared by commands that touch the ledger database.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *sqlstore.Store
	ledger   *ledger.Service
	cashflow *cashflow.Service
}

func (o *rootOptions) resolveConfigPath() (string, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	if path == "" {
		path = config.FileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return abs, nil
}

// open loads the config, sets up logging and opens the database.
func (o *rootOptions) open(cmd *cobra.Command) (*app, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'ledgerly init' first)", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	log := newLogger(cfg.Log, cmd.ErrOrStderr())

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DatabasePath(filepath.Dir(path))
	st, err := sqlstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.WithField("path", dbPath).Debug("database opened")

	return &app{
		cfg:   cfg,
		log:   log,
		store: st,
		ledger: ledger.NewService(st, log, ledger.Options{
			EnforceCreditLimit: cfg.CreditLimit.Enforce,
			DefaultCurrency:    cfg.Locale.Currency,
			MinimumDue:         policy,
		}),
		cashflow: cashflow.NewService(st, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the app, runs fn and closes the database.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// newLogger builds a logrus logger from the log section of the config.
// An unknown level falls back to info.
func newLogger(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
