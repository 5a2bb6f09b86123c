package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posts-api/internal/config"
	"posts-api/internal/server"
	"posts-api/internal/store"
	"posts-api/internal/worker"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "postsd",
	Short: "postsd - a small JSON API for blog posts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd.Flags(), cfg); err != nil {
			return err
		}
		return cfg.Validate()
	},
}

// applyFlags overrides cfg with the flags the user actually set.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	overrides := map[string]*string{
		"port":   &cfg.Port,
		"redis":  &cfg.RedisAddr,
		"badger": &cfg.BadgerPath,
	}
	for name, dst := range overrides {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return fmt.Errorf("read --%s: %w", name, err)
		}
		*dst = v
	}
	return nil
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API and the import worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The server needs both Redis and the Badger documents.
		st, err := store.NewHybridStore(cfg.RedisAddr, cfg.BadgerPath, logger)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		go st.RunGC(ctx, cfg.GCInterval)

		w := worker.NewWorker(st, st, logger)
		go w.Start(ctx)

		srv := server.NewServer(st, logger)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(cfg.Addr())
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server stopped", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
		logger.Info("Goodbye!")
	},
}

var importCmd = &cobra.Command{
	Use:   "import [url]",
	Short: "Queue a web page to be imported as a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]

		// Queue only: an empty badger path leaves the running server's file lock alone.
		st, err := store.NewHybridStore(cfg.RedisAddr, "", logger)
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer st.Close()

		ctx := context.Background()
		if err := st.Enqueue(ctx, url); err != nil {
			logger.Fatal("Failed to queue url", zap.Error(err))
		}

		pending, _ := st.QueueLen(ctx)
		logger.Info("URL queued", zap.String("url", url), zap.Int64("pending", pending))
	},
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd.PersistentFlags().String("port", cfg.Port, "HTTP listen port")
	rootCmd.PersistentFlags().String("redis", cfg.RedisAddr, "Address of Redis server")
	rootCmd.PersistentFlags().String("badger", cfg.BadgerPath, "Path to BadgerDB data directory")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(importCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
