package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/callsheet/internal/app"
	"github.com/nhle/callsheet/internal/checkbook"
	"github.com/nhle/callsheet/internal/logging"
	"github.com/nhle/callsheet/internal/model"
	appsync "github.com/nhle/callsheet/internal/sync"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "checklist",
		Short:   "Keep named checklists in a JSON file from the terminal",
		Version: Version,
		RunE:    run,
	}
	rootCmd.Flags().String("config", model.DefaultConfigPath(), "Path to the YAML config file")
	rootCmd.Flags().StringP("file", "f", "", "Checklist file (overrides checklist.data_file)")
	rootCmd.Flags().String("log-file", "", "Write logs to this file; logging is off when empty")
	rootCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	path := cfg.Checklist.DataFile
	if f, _ := cmd.Flags().GetString("file"); f != "" {
		path = f
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	// The terminal belongs to the UI, so logs only go to a file.
	var out io.Writer = io.Discard
	if logPath, _ := cmd.Flags().GetString("log-file"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger, err := logging.New(out, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	book, err := checkbook.Open(path, time.Now())
	if err != nil {
		return err
	}
	logger.Info("opened checklist file", "path", book.Path())

	if err := os.MkdirAll(filepath.Dir(book.Path()), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	watcher, err := appsync.New(book.Path(), 0)
	if err != nil {
		logger.Warn("file watching disabled", "error", err)
		watcher = nil
	}

	p := tea.NewProgram(app.New(book, watcher, logger), tea.WithAltScreen())
	_, err = p.Run()
	if watcher != nil {
		if serr := watcher.Stop(); serr != nil {
			logger.Debug("stopping watcher", "error", serr)
		}
	}
	return err
}
