package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/logger"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/store"
)

var (
	flagDB       string
	flagQuiet    bool
	flagLogLevel string

	appCfg config.Config
	appLog = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:               "cbudget",
	Short:             "Personal budget tracker",
	Long:              "Plan a monthly budget, track spending against it, and get alerts before you overspend.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDB, "db", "d", "", "Budget database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error, disabled")
}

// setup loads configuration and the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	appCfg = cfg

	appLog = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(appLog)
	appLog.Debug().Str("db", cfg.DBPath()).Str("config", config.ConfigPath()).Msg("configuration loaded")
	return nil
}

// sessionOptions are shared by every command that opens the store.
func sessionOptions() []session.Option {
	return []session.Option{
		session.WithLogger(appLog),
		session.WithDefaultThresholds(appCfg.Thresholds()),
	}
}

// openSession opens the configured store. Callers must run the returned
// close func when done.
func openSession() (*session.Session, func(), error) {
	path := appCfg.DBPath()
	db, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening budget store %s: %w", path, err)
	}
	sess, err := session.Open(db, sessionOptions()...)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return sess, func() { _ = db.Close() }, nil
}

// withSession runs fn against an open session.
func withSession(fn func(*session.Session) error) error {
	sess, closeFn, err := openSession()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(sess)
}

// info prints a status line unless --quiet is set.
func info(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Printf("  "+format+"\n", args...)
}
