// Package main provides the CLI entrypoint for adaptype.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/adaptype/internal/config"
	"github.com/verte-zerg/adaptype/internal/engine"
	"github.com/verte-zerg/adaptype/internal/generator"
	"github.com/verte-zerg/adaptype/internal/logger"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
	"github.com/verte-zerg/adaptype/internal/store"
	"github.com/verte-zerg/adaptype/internal/tui"
	"github.com/verte-zerg/adaptype/internal/wordlist"
)

const (
	defaultWords      = 20
	defaultKeySizes   = "retain"
	defaultWeakTop    = 8
	defaultWeakFactor = 2.0
	defaultWeakWindow = 20
	defaultLogLevel   = "info"
)

var (
	practiceName         string
	practiceWords        int
	practiceWordList     string
	practiceRandom       bool
	practiceKeySizes     string
	practiceAdaptHistory bool
	practiceSettle       time.Duration
	practiceFocusWeak    bool
	practiceWeakTop      int
	practiceWeakFactor   float64
	practiceWeakWindow   int

	dbPath   string
	logLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adaptype",
		Short:         "Adaptive keyboard typing test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceName, "name", "", "typist name (prompted when empty)")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per test")
	rootCmd.Flags().StringVar(&practiceWordList, "wordlist", config.DefaultWordListPath(), "word list file, one word per line")
	rootCmd.Flags().BoolVar(&practiceRandom, "random", false, "pick words at random instead of the first N")
	rootCmd.Flags().StringVar(&practiceKeySizes, "key-sizes", defaultKeySizes, "key sizes on restart: retain or reset")
	rootCmd.Flags().BoolVar(&practiceAdaptHistory, "adapt-history", false, "start with keys enlarged from stored errors")
	rootCmd.Flags().DurationVar(&practiceSettle, "settle", engine.DefaultSettleDelay, "pause before advancing to the next word")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias words toward frequently mistyped keys")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak keys to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak keys")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent results used for key history")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newWordlistCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "name", &practiceName, fileCfg.Practice.Name)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)
	applyStringConfig(cmd, "wordlist", &practiceWordList, fileCfg.Practice.WordList)
	applyBoolConfig(cmd, "random", &practiceRandom, fileCfg.Practice.Random)
	applyStringConfig(cmd, "key-sizes", &practiceKeySizes, fileCfg.Practice.KeySizes)
	applyBoolConfig(cmd, "adapt-history", &practiceAdaptHistory, fileCfg.Practice.AdaptHistory)
	applyMillisConfig(cmd, "settle", &practiceSettle, fileCfg.Practice.SettleMs)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyCommonConfig(cmd, fileCfg)

	cfg := model.Config{
		Name:         practiceName,
		Words:        practiceWords,
		WordListPath: practiceWordList,
		Random:       practiceRandom,
		KeySizes:     practiceKeySizes,
		AdaptHistory: practiceAdaptHistory,
		Settle:       practiceSettle,
		FocusWeak:    practiceFocusWeak,
		WeakTop:      practiceWeakTop,
		WeakFactor:   practiceWeakFactor,
		WeakWindow:   practiceWeakWindow,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	policy, err := engine.ParseKeySizePolicy(cfg.KeySizes)
	if err != nil {
		return fmt.Errorf("invalid --key-sizes value: %w", err)
	}

	// The TUI owns the terminal, so logs only go to a file.
	logPath := config.DefaultLogPath()
	if fileCfg.Log.File != nil {
		logPath = *fileCfg.Log.File
	}
	log, err := logger.New(logger.Config{Level: logLevel, File: logPath})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := log.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	words, err := wordlist.Load(cfg.WordListPath)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	engineOpts := []engine.Option{
		engine.WithKeySizePolicy(policy),
		engine.WithSettleDelay(cfg.Settle),
	}
	if cfg.AdaptHistory {
		aggs, err := st.KeyErrorTotals(ctx, cfg.Name, cfg.WeakWindow)
		if err != nil {
			log.Error().Err(err).Msg("failed to load key history")
		} else {
			sizes := stats.KeySizesFromTotals(aggs)
			log.Info().Int("keys", len(sizes)).Msg("seeded key sizes from history")
			engineOpts = append(engineOpts, engine.WithKeySizes(sizes))
		}
	}

	weakKeys := func() map[rune]struct{} {
		aggs, err := st.KeyErrorTotals(ctx, cfg.Name, cfg.WeakWindow)
		if err != nil {
			log.Error().Err(err).Msg("failed to load weak keys")
			return nil
		}
		weakSet := stats.SelectWeakKeys(aggs, cfg.WeakTop)
		if len(weakSet) == 0 {
			log.Info().Msg("no key error history yet; using normal generator")
		}
		return weakSet
	}

	m := tui.NewModel(tui.Options{
		Name:   cfg.Name,
		Words:  newWordSource(cfg, words, generator.New(), weakKeys),
		Sink:   st,
		Logger: log.Logger,
		Engine: engineOpts,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// newWordSource picks the words for each test. Weak keys are looked up again
// for every test so a restart sees the result just saved.
func newWordSource(cfg model.Config, words []string, gen *generator.Generator, weakKeys func() map[rune]struct{}) tui.WordSource {
	return func() ([]string, error) {
		var picked []string
		switch {
		case cfg.FocusWeak:
			if weakSet := weakKeys(); len(weakSet) > 0 {
				picked = gen.GenerateWeighted(words, cfg.Words, weakSet, cfg.WeakFactor)
			} else {
				picked = gen.Generate(words, cfg.Words)
			}
		case cfg.Random:
			picked = gen.Generate(words, cfg.Words)
		default:
			picked = generator.First(words, cfg.Words)
		}
		if len(picked) == 0 {
			return nil, fmt.Errorf("no words to practice")
		}
		return picked, nil
	}
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.Settle < 0 {
		return fmt.Errorf("--settle must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
