package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/adaptype/internal/config"
	"github.com/verte-zerg/adaptype/internal/logger"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
	"github.com/verte-zerg/adaptype/internal/store"
)

const (
	defaultResultsTop   = 3
	defaultTrendWindow  = 3
	defaultOutputWidth  = 80
	minTopKeysBarWidth  = 10
	maxTopKeysBarWidth  = 40
	topKeysLabelColumns = 11
)

var (
	resultsName   string
	resultsSince  string
	resultsLast   int
	resultsTop    int
	resultsWindow int
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show stored test results",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	cmd.Flags().StringVar(&resultsName, "name", "", "only results for this typist")
	cmd.Flags().StringVar(&resultsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&resultsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&resultsTop, "top", defaultResultsTop, "number of most mistyped keys to show")
	cmd.Flags().IntVar(&resultsWindow, "trend-window", defaultTrendWindow, "moving average window for the trend")
	return cmd
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCommonConfig(cmd, fileCfg)

	cfg, err := resultsConfig(resultsName, resultsSince, resultsLast, resultsTop)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: logLevel, Console: true})
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	log.Debug().Int("results", len(report.Results)).Msg("loaded results")
	return writeReport(cmd.OutOrStdout(), report, resultsWindow, outputWidth())
}

func resultsConfig(name, since string, last, top int) (model.ResultsConfig, error) {
	if last < 0 {
		return model.ResultsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if top < 0 {
		return model.ResultsConfig{}, fmt.Errorf("--top must be >= 0")
	}
	cfg := model.ResultsConfig{Name: name, Last: last, Top: top}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.ResultsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func writeReport(w io.Writer, report stats.Report, window, width int) error {
	if err := stats.RenderSummary(w, report.Results); err != nil {
		return err
	}
	if len(report.Results) == 0 {
		return nil
	}
	if err := stats.RenderResultsTable(w, report.Results); err != nil {
		return err
	}
	if err := stats.RenderTrend(w, report.Results, window); err != nil {
		return err
	}
	barWidth := min(maxTopKeysBarWidth, max(minTopKeysBarWidth, width-topKeysLabelColumns))
	return stats.RenderTopKeys(w, report.TopKeys, barWidth)
}

func outputWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultOutputWidth
	}
	return width
}
