package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/attunehq/nudge/config"
	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/regexp"
	"github.com/attunehq/nudge/scan"
	"github.com/attunehq/nudge/version"
)

const rulesDescription = `rule file to load instead of discovering them (repeatable)
without this flag rules are loaded, in order, from:
1. $XDG_CONFIG_HOME/nudge/rules.yaml
2. (cwd)/.nudge.yaml
3. (cwd)/.nudge/**/*.yaml`

var (
	rootCmd = &cobra.Command{
		Use:           "nudge",
		Short:         "Nudge keeps coding agents on the rails with project rules",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initSettings(cmd)

			// Set the timeout for all the commands
			if timeout, err := cmd.Flags().GetInt("timeout"); err != nil {
				return err
			} else if timeout > 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
				cmd.SetContext(ctx)
				cobra.OnFinalize(cancel)
			}
			return nil
		},
	}

	// settings are resolved once per process in PersistentPreRunE
	settings = config.DefaultSettings()
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "settings file (default $XDG_CONFIG_HOME/nudge/config.toml)")
	rootCmd.PersistentFlags().StringSlice("rules", nil, rulesDescription)
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (trace, debug, info, warn, error, fatal), overrides log_level")
	rootCmd.PersistentFlags().Bool("no-color", false, "turn off color for terminal output")
	rootCmd.PersistentFlags().Int("timeout", 0, "set a timeout for nudge commands in seconds (default \"0\", no timeout is set)")
}

// initSettings loads settings and applies the process-wide ones. A broken
// settings file never stops the hook: it is logged and defaults are used.
func initSettings(cmd *cobra.Command) {
	path := mustGetStringFlag(cmd, "config")
	loaded, err := config.LoadSettings(path)
	if err != nil {
		logging.Warn().Err(err).Msg("unable to load settings, using defaults")
		loaded = config.DefaultSettings()
	}
	settings = loaded

	if ll := mustGetStringFlag(cmd, "log-level"); ll != "" {
		settings.LogLevel = strings.ToLower(ll)
	}
	level, ok := logging.ParseLevel(settings.LogLevel)
	logging.Setup(level, settings.LogFile)
	if !ok {
		logging.Warn().Msgf("unknown log level: %s", settings.LogLevel)
	}

	if err := regexp.SetEngine(settings.RegexEngine); err != nil {
		logging.Warn().Err(err).Msg("falling back to the stdlib regex engine")
		_ = regexp.SetEngine("stdlib")
	}
	logging.Debug().Msgf("using %s regex engine", regexp.Version())
}

// loadRegistry compiles the rules visible from cwd, or the files named by
// --rules. Broken files are skipped with a warning.
func loadRegistry(cmd *cobra.Command, cwd string) *scan.Registry {
	opts := settings.RuleOptions()
	var rules []config.CompiledRule
	if paths := mustGetStringSliceFlag(cmd, "rules"); len(paths) > 0 {
		rules = config.LoadPaths(paths, opts)
	} else {
		rules = config.LoadAll(cwd, opts)
	}
	logging.Debug().Int("rules", len(rules)).Str("cwd", cwd).Msg("rules loaded")
	return scan.NewRegistry(rules, settings.Concurrency)
}

// exitError ends the process with code after the command has already
// reported why.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		if strings.Contains(err.Error(), "unknown flag") {
			// exit code 126: Command invoked cannot execute
			os.Exit(126)
		}
		logging.Fatal().Msg(err.Error())
	}
}

// useColor reports whether output to stdout should be styled.
func useColor(cmd *cobra.Command) bool {
	if mustGetBoolFlag(cmd, "no-color") {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		logging.Fatal().Err(err).Msg("unable to determine the working directory")
	}
	return wd
}

func mustGetBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		logging.Fatal().Err(err).Msgf("could not get flag: %s", name)
	}
	return value
}

func mustGetStringFlag(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		logging.Fatal().Err(err).Msgf("could not get flag: %s", name)
	}
	return value
}

func mustGetStringSliceFlag(cmd *cobra.Command, name string) []string {
	value, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		logging.Fatal().Err(err).Msgf("could not get flag: %s", name)
	}
	return value
}
