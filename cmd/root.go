package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/config"
	"github.com/abhisek/examprep/internal/logging"
	"github.com/abhisek/examprep/internal/store"
)

// tuiAnnotation marks commands that take over the terminal. Their logs go
// to the file only.
const tuiAnnotation = "tui"

// runtime is what PersistentPreRunE resolves for every command.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error
}

var rt runtime

var rootCmd = &cobra.Command{
	Use:          "examprep",
	Short:        "Exam preparation tracker",
	Long:         "ExamPrep: timed mock exams, study logs, interview feedback and progress analytics in the terminal.",
	SilenceUsage: true,
	Annotations:  map[string]string{tuiAnnotation: "true"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if rt.closeLog != nil {
			return rt.closeLog()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides EXAMPREP_DB)")
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/examprep/config.yaml)")
	pf.String("env-file", ".env", "Environment file loaded before reading the config")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Console log format: console or json")
	pf.String("log-file", "", "Log file (default $XDG_STATE_HOME/examprep/examprep.log)")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(skillgapCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and builds the root logger.
func setup(cmd *cobra.Command) error {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(config.Options{
		File:    file,
		EnvFile: envFile,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		if logFile, err = config.DefaultLogFile(); err != nil {
			return err
		}
	}
	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   logFile,
		Stream: os.Stderr,
	}
	if cmd.Annotations[tuiAnnotation] == "true" {
		opts.Stream = nil
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	rt = runtime{cfg: cfg, log: log.With(zap.String("cmd", cmd.CommandPath())), closeLog: closeLog}
	return nil
}

// resolveDBPath returns the configured database path (--db, EXAMPREP_DB or
// the config file), else the default XDG path.
func resolveDBPath() (string, error) {
	if p := rt.cfg.DB; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
