package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/nomes/internal/api"
	"github.com/verte-zerg/nomes/internal/chart"
	"github.com/verte-zerg/nomes/internal/dataset"
	"github.com/verte-zerg/nomes/internal/model"
)

const (
	notFoundMessage      = "😢 Não há registros com esse nome"
	requestFailedMessage = "Falha na requisição, tente novamente"
)

var printTable bool

func newRankingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print the overall ranking",
		Args:  cobra.NoArgs,
		RunE:  runRankingCmd,
	}
	cmd.Flags().BoolVar(&printTable, "table", false, "print a table instead of a chart")
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "Print how often a name was given per period",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearchCmd,
	}
	cmd.Flags().BoolVar(&printTable, "table", false, "print a table instead of a chart")
	return cmd
}

func runRankingCmd(cmd *cobra.Command, _ []string) error {
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
	return printRanking(cmd.Context(), cmd.OutOrStdout(), newClient(cfg, logger), printTable, colorPreference(cfg))
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
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
	return printSearch(cmd.Context(), cmd.OutOrStdout(), newClient(cfg, logger), args[0], printTable, colorPreference(cfg))
}

// colorPreference returns nil unless color was set by flag or config, in
// which case terminal detection is skipped.
func colorPreference(cfg model.Config) *bool {
	if !uiColorSet {
		return nil
	}
	color := cfg.ForceColor
	return &color
}

func printRanking(ctx context.Context, w io.Writer, src api.Source, table bool, color *bool) error {
	records, err := src.Ranking(contextOrBackground(ctx))
	if err != nil {
		if errors.Is(err, api.ErrRequestFailed) {
			return fmt.Errorf("%s: %w", requestFailedMessage, err)
		}
		return fmt.Errorf("failed to load ranking: %w", err)
	}
	ds := dataset.Build(records, dataset.ByName)
	return printDataset(w, "Ranking geral", "Nome", ds, table, color)
}

func printSearch(ctx context.Context, w io.Writer, src api.Source, name string, table bool, color *bool) error {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return fmt.Errorf("name must not be empty")
	}
	records, err := src.NameHistory(contextOrBackground(ctx), query)
	if err != nil {
		if errors.Is(err, api.ErrRequestFailed) {
			return fmt.Errorf("%s: %w", requestFailedMessage, err)
		}
		return fmt.Errorf("%s", notFoundMessage)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s", notFoundMessage)
	}
	ds := dataset.Build(records, dataset.ByPeriod)
	title := "Frequência de " + dataset.Capitalize(query) + " por período"
	return printDataset(w, title, "Período", ds, table, color)
}

func printDataset(w io.Writer, title, labelHeader string, ds model.ChartDataset, table bool, color *bool) error {
	if !table {
		if err := plotDataset(w, title, ds, color); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, line := range chart.FormatTable(labelHeader, ds) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func plotDataset(w io.Writer, title string, ds model.ChartDataset, color *bool) error {
	switch {
	case color == nil:
		return chart.PlotBars(w, title, ds, 0)
	case *color:
		return chart.PlotBarsWithColor(w, title, ds, 0, true)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, chart.RenderBars(ds, 0, false))
	return err
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
