package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/penwyp/go-tally/internal/config"
	"github.com/penwyp/go-tally/internal/core/tally"
	"github.com/penwyp/go-tally/internal/data/storage"
	"github.com/penwyp/go-tally/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once setup has run.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "go-tally",
		Short: "Count categorized events from the keyboard",
		Long: `go-tally is a terminal tally board for counting categorized events.

Every key press records an event against a topic. The board shows the running
totals, each topic's share and the sequence of events, and everything is
saved after each change.

Examples:
  go-tally                          # Open the interactive board
  go-tally add "Flaky"              # Add a topic
  go-tally inc Pass                 # Count one event for Pass
  go-tally stats --output json      # Print totals as JSON
  go-tally export --dir ./exports   # Write the totals and events CSV files
  go-tally --backend sqlite         # Keep the board in a SQLite database`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = util.CloseLogger()
		},
		RunE: a.runBoard,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default is ./.go-tally.yaml or ~/.go-tally.yaml)")
	flags.String("backend", config.DefaultBackend, "Storage backend (file, sqlite, mysql, postgres, memory)")
	flags.String("data-dir", config.DefaultDataDir, "Directory for the file and sqlite backends")
	flags.String("dsn", "", "Database connection string for the sqlite, mysql and postgres backends")
	flags.String("export-dir", config.DefaultExportDir, "Directory that exports are written to")
	flags.Duration("alert-duration", 0, "How long the capacity alert stays up (default 5s)")
	flags.Duration("poll-interval", 0, "How often watch polls database backends (default 1s)")
	flags.String("log-file", config.DefaultLogFile, "Log file path")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.Bool("debug", false, "Enable debug mode")

	for _, name := range []string{"backend", "data-dir", "dsn", "export-dir", "log-file", "log-level", "debug"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		newAddCmd(a),
		newIncCmd(a),
		newClearCmd(a),
		newResetCmd(a),
		newExportCmd(a),
		newStatsCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

// setup resolves configuration and starts logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// Durations only override when given, so the config file can set them
	for _, name := range []string{"alert-duration", "poll-interval"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			a.v.Set(name, f.Value.String())
		}
	}

	config.BindEnv(a.v)
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logLevel := cfg.LogLevel
	if cfg.Debug {
		logLevel = "debug"
	}
	if err := util.EnsureDir(filepath.Dir(cfg.LogFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(logLevel, cfg.LogFile, cfg.Debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	util.LogDebug("Configuration loaded",
		util.F("command", cmd.Name()),
		util.F("backend", cfg.Backend),
		util.F("data_dir", cfg.DataDir))
	return nil
}

// openStore opens the configured backend and loads the board from it. The
// caller closes the returned KV.
func (a *app) openStore(ctx context.Context) (*tally.Store, storage.KV, error) {
	kv, err := storage.Open(ctx, a.cfg.StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", a.cfg.Backend, err)
	}
	store := tally.NewStore(storage.NewRepository(kv))
	store.Load(ctx)
	return store, kv, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
