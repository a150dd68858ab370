package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jxucoder/dsping/internal/config"
)

// configKey describes a single configuration value.
type configKey struct {
	Key      string
	Desc     string
	Required bool
	Secret   bool
}

// allConfigKeys lists every configurable value in display order.
var allConfigKeys = []configKey{
	{config.EnvAPIKey, "DeepSeek API key", true, true},
	{config.EnvTimeout, "Request timeout, e.g. 30s (empty waits indefinitely)", false, false},
	{config.EnvDataDir, "Directory for the run history database", false, false},
	{config.EnvLogLevel, "Log level: debug, info, warn, error", false, false},
}

// ---------------------------------------------------------------------------
// Cobra commands
// ---------------------------------------------------------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dsping configuration",
	Long: `Manage dsping configuration.

Values are read from the env file (.env in the working directory, or
--env-file) and can be overridden by environment variables.

  dsping config set KEY VALUE      Set a single value in the env file
  dsping config show               Show the effective configuration
  dsping config path               Print the env file path`,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a single configuration value in the env file. Example:
  dsping config set DEEPSEEK_API_KEY sk-xxxxxxxxxxxx`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display all configured values. Secrets are masked.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print env file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// ---------------------------------------------------------------------------
// Env file helpers
// ---------------------------------------------------------------------------

// configFilePath returns --env-file, or .env in the working directory.
func configFilePath() string {
	path := envFile
	if path == "" {
		path = config.DefaultEnvFile
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// readConfigFile returns the env file's values; a missing file is empty.
func readConfigFile() (map[string]string, error) {
	values, err := godotenv.Read(configFilePath())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

// effectiveValue returns the current value for a key, preferring env vars over the file.
func effectiveValue(key string, fileValues map[string]string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fileValues[key]
}

// writeConfigFile saves values to the env file, readable only by the owner.
func writeConfigFile(values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	path := configFilePath()
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("securing config: %w", err)
	}
	return nil
}

func findKey(key string) (configKey, bool) {
	for _, ck := range allConfigKeys {
		if ck.Key == key {
			return ck, true
		}
	}
	return configKey{}, false
}

// ---------------------------------------------------------------------------
// Command implementations
// ---------------------------------------------------------------------------

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	ck, known := findKey(key)
	if !known {
		errw := cmd.ErrOrStderr()
		fmt.Fprintf(errw, "warning: %s is not a dsping setting. Known keys:\n", key)
		for _, k := range allConfigKeys {
			fmt.Fprintf(errw, "  %-20s %s\n", k.Key, k.Desc)
		}
	}

	fileValues, err := readConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	fileValues[key] = value

	if err := writeConfigFile(fileValues); err != nil {
		return err
	}

	display := value
	if ck.Secret {
		display = config.MaskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, display)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fileValues, err := readConfigFile()
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	printConfig(cmd.OutOrStdout(), fileValues)
	return nil
}

func printConfig(w io.Writer, fileValues map[string]string) {
	fmt.Fprintf(w, "Config file: %s\n\n", configFilePath())

	for _, ck := range allConfigKeys {
		value := effectiveValue(ck.Key, fileValues)
		source := ""
		if os.Getenv(ck.Key) != "" {
			source = " (from env)"
		} else if fileValues[ck.Key] != "" {
			source = " (from config file)"
		}

		display := "(not set)"
		if value != "" {
			if ck.Secret {
				display = config.MaskSecret(value)
			} else {
				display = value
			}
		}

		reqTag := ""
		if ck.Required {
			reqTag = " *"
		}

		fmt.Fprintf(w, "  %-20s %s%s\n", ck.Key+reqTag, display, source)
	}

	fmt.Fprintln(w, "\n  * = required")
}
