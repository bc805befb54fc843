package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/nomes/internal/config"
	"github.com/verte-zerg/nomes/internal/seed"
	"github.com/verte-zerg/nomes/internal/server"
	"github.com/verte-zerg/nomes/internal/store"
)

const shutdownTimeout = 5 * time.Second

var (
	serveAddr string
	dbPath    string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an imported dataset with the statistics API routes",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath(), "dataset database path")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a .yaml or .xlsx dataset for serve",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&dbPath, "db", config.DefaultDBPath(), "dataset database path")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	st, err := store.Open(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	count, err := st.CountNames(contextOrBackground(cmd.Context()))
	if err != nil {
		return fmt.Errorf("failed to read db: %w", err)
	}
	if count == 0 {
		logErrf("dataset %s has no name histories; load one with: nomes import FILE\n", cfg.DatasetPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.ServeAddress, st, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving", zap.String("addr", cfg.ServeAddress), zap.String("db", cfg.DatasetPath))
	logErrf("Serving on http://%s (ctrl+c to stop)\n", cfg.ServeAddress)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ds, err := seed.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	st, err := store.Open(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sum, err := seed.Apply(contextOrBackground(cmd.Context()), st, ds)
	if err != nil {
		return fmt.Errorf("failed to import dataset: %w", err)
	}
	return printSummary(cmd.OutOrStdout(), cfg.DatasetPath, sum)
}

func printSummary(w io.Writer, path string, sum seed.Summary) error {
	_, err := fmt.Fprintf(w, "Imported %d ranking entries and %d names (%d periods) into %s\n",
		sum.RankingEntries, sum.Names, sum.Periods, path)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
