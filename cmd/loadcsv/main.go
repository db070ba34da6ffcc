package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yamdb/reviewhub/internal/bootstrap"
	"github.com/yamdb/reviewhub/internal/infrastructure/config"
	"github.com/yamdb/reviewhub/internal/infrastructure/queue"
	"github.com/yamdb/reviewhub/internal/loader"
	"github.com/yamdb/reviewhub/pkg/logger"
)

var (
	dataDir string
	workers int
)

var rootCmd = &cobra.Command{
	Use:   "loadcsv",
	Short: "Import categories, genres, titles, users, reviews and comments from CSV files",
	Long: `loadcsv reads category.csv, genre.csv, titles.csv, genre_title.csv (optional),
users.csv, review.csv and comments.csv from a directory and stores them in the
configured backend. Rows whose id already exists are left untouched, so the
command can be run again safely.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLoad,
}

func init() {
	rootCmd.Flags().StringVarP(&dataDir, "dir", "d", "static/data", "directory holding the CSV files")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent writers per file (default LOADER_WORKERS)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runLoad(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "reviewhub-loadcsv",
	})

	if workers <= 0 {
		workers = cfg.Loader.Workers
	}

	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	start := time.Now()
	loadLog := logger.Component(log, "loader")
	l := loader.New(store.Seeder, queue.NewDispatcher(workers, loadLog), loadLog)
	results, err := l.LoadDir(ctx, dataDir)
	if err != nil {
		return err
	}

	var created, skipped int64
	for _, r := range results {
		created += r.Created
		skipped += r.Skipped
		fmt.Fprintf(cmd.OutOrStdout(), "%-13s created %6d  skipped %6d\n", r.Table, r.Created, r.Skipped)
	}
	log.Info().
		Int64("created", created).
		Int64("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("csv import finished")
	return nil
}
