package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/adaptype/internal/config"
	"github.com/verte-zerg/adaptype/internal/engine"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# adaptype configuration
# Uncomment a value to enable it. Environment variables (%sNAME, %sWORDS,
# %sWORDLIST, %sKEY_SIZES, %sDB, %sLOG_LEVEL, %sLOG_FILE) override
# this file and CLI flags override both.

[practice]
# name = ""               # Typist name (prompted when empty)
# words = %d              # Words per test
# wordlist = %q
# random = false          # Pick words at random instead of the first N
# key-sizes = %q     # Key sizes on restart: retain or reset
# adapt-history = false   # Start with keys enlarged from stored errors
# settle-ms = %d         # Pause before advancing to the next word
# focus-weak = false      # Bias words toward frequently mistyped keys
# weak-top = %d            # Number of weak keys to focus on
# weak-factor = %.1f      # Weight factor for weak keys
# weak-window = %d        # Number of recent results used for key history

[storage]
# db = %q

[log]
# level = %q
# file = %q
`,
		config.EnvPrefix, config.EnvPrefix, config.EnvPrefix, config.EnvPrefix,
		config.EnvPrefix, config.EnvPrefix, config.EnvPrefix,
		defaultWords,
		config.DefaultWordListPath(),
		defaultKeySizes,
		engine.DefaultSettleDelay.Milliseconds(),
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		config.DefaultDBPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

// applyCommonConfig fills the persistent flags from the config file.
func applyCommonConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.DB)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyMillisConfig(cmd *cobra.Command, name string, target *time.Duration, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = time.Duration(*value) * time.Millisecond
}
