package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/adaptype/internal/config"
	"github.com/verte-zerg/adaptype/internal/logger"
	"github.com/verte-zerg/adaptype/internal/wordlist"
)

var (
	wordlistFrom  string
	wordlistOut   string
	wordlistForce bool
)

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Import a word list",
		Long: "Import a plain text word list, one word per line. Only lowercase a-z words are kept " +
			"so every key can be drawn on the keyboard.",
		Args: cobra.NoArgs,
		RunE: runWordlistCmd,
	}
	cmd.Flags().StringVar(&wordlistFrom, "from", "", "source file, one word per line")
	cmd.Flags().StringVar(&wordlistOut, "out", config.DefaultWordListPath(), "destination file")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing file")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCommonConfig(cmd, fileCfg)

	log, err := logger.New(logger.Config{Level: logLevel, Console: true})
	if err != nil {
		return err
	}

	count, err := importWordList(wordlistFrom, wordlistOut, wordlistForce)
	if err != nil {
		return err
	}
	log.Info().Int("words", count).Str("path", wordlistOut).Msg("wrote word list")
	return nil
}

// importWordList filters the words in from and writes them to out. It
// returns the number of words written.
func importWordList(from, out string, force bool) (int, error) {
	if from == "" {
		return 0, fmt.Errorf("--from is required")
	}
	if !force {
		if _, err := os.Stat(out); err == nil {
			return 0, fmt.Errorf("word list already exists: %s (use --force to overwrite)", out)
		} else if !os.IsNotExist(err) {
			return 0, fmt.Errorf("failed to stat word list: %w", err)
		}
	}
	raw, err := wordlist.LoadWords(from)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", from, err)
	}
	words := wordlist.Filter(raw, wordlist.Typeable)
	if len(words) == 0 {
		return 0, fmt.Errorf("%s has no lowercase a-z words", from)
	}
	if err := writeWordList(out, words); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return len(words), nil
}

func writeWordList(path string, words []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create word list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "wordlist-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, word := range words {
		if _, err := fmt.Fprintln(writer, word); err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close word list: %w", err)
	}
	return os.Rename(tmpPath, path)
}
