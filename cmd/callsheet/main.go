package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/spf13/cobra"

	"github.com/nhle/callsheet/internal/auth"
	"github.com/nhle/callsheet/internal/checklist"
	"github.com/nhle/callsheet/internal/credential"
	"github.com/nhle/callsheet/internal/logging"
	"github.com/nhle/callsheet/internal/model"
	"github.com/nhle/callsheet/internal/store"
	"github.com/nhle/callsheet/internal/web"
)

const shutdownTimeout = 15 * time.Second

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "callsheet",
		Short:   "Serve per-user sales call checklists over HTTP",
		Version: Version,
		RunE:    serve,
	}
	rootCmd.Flags().String("config", model.DefaultConfigPath(), "Path to the YAML config file")
	rootCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	rootCmd.Flags().String("db", "", "SQLite database path (overrides database.path)")
	rootCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	})

	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}

	cookieKey, err := resolveCookieKey(cfg.Session, logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	authSvc := auth.NewService(db, auth.NewPasswordHasher(cfg.Auth.BcryptCost), logger)
	srv, err := web.New(web.Config{
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		SessionExpiration: cfg.Session.Expiration,
		CookieSecure:      cfg.Session.CookieSecure,
		CookieKey:         cookieKey,
		SessionStorage:    web.NewSessionStorage(cfg.Session),
	}, authSvc, checklist.New(db, logger), logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	listenErr := startListening(srv, cfg.Server.Addr)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				err := srv.Shutdown(ctx)
				// The database outlives every in-flight request.
				if cerr := db.Close(); err == nil {
					err = cerr
				}
				return err
			},
		},
	)

	exitCode, err := awaitServer(listenErr, wait)
	if err != nil {
		logger.Error("server stopped", "error", err)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = db.Close()
		return err
	}
	logger.Info("exited", "code", exitCode)
	os.Exit(exitCode)
	return nil
}

// startListening serves in the background. The returned channel receives
// the error if the listener fails; a clean shutdown sends nothing.
func startListening(srv *web.Server, addr string) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Listen(addr); err != nil {
			errCh <- err
		}
	}()
	return errCh
}

// awaitServer blocks until either the listener fails or graceful shutdown
// reports its exit code.
func awaitServer(listenErr <-chan error, wait <-chan int) (int, error) {
	select {
	case err := <-listenErr:
		return 1, fmt.Errorf("listening: %w", err)
	case code := <-wait:
		return code, nil
	}
}

func loadConfig(cmd *cobra.Command) (*model.AppConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// resolveCookieKey prefers the configured key and otherwise keeps one in
// the OS keyring, so sessions survive restarts.
func resolveCookieKey(cfg model.SessionConfig, logger *slog.Logger) (string, error) {
	if cfg.CookieKey != "" {
		return cfg.CookieKey, nil
	}

	vault, err := credential.Open()
	if err == nil {
		var key string
		key, err = vault.CookieKey(encryptcookie.GenerateKey)
		if err == nil {
			return key, nil
		}
	}

	logger.Warn("no keyring available, sessions will not survive a restart", "error", err)
	return encryptcookie.GenerateKey(), nil
}

func initConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := model.SaveConfig(path, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().String("config", model.DefaultConfigPath(), "Path to write")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}
