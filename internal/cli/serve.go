package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/bigo/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the complexity HTTP API",
	Long: `Start the HTTP API in foreground mode. Computations requested over
POST /complexity run one at a time.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Override listen address if specified via flag
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg)
	log.Info("bigo starting",
		"version", Version,
		"config", cfgFile,
	)

	runner, err := newRunner(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}
	host := newHost(cfg, log)
	store := newStore(cfg, log, host)

	srv := server.New(cfg, runner, store, host, log, Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Handle shutdown signals
	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("bigo ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("bigo stopped")
	return nil
}
