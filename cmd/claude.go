package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/report"
)

func init() {
	rootCmd.AddCommand(claudeCmd)
	claudeCmd.AddCommand(hookCmd)
}

var claudeCmd = &cobra.Command{
	Use:   "claude",
	Short: "integrate with Claude Code",
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "respond to a Claude Code hook event read from stdin",
	Long: `Reads one Claude Code hook event from stdin and prints the response.

Nothing is printed when no rule fires. The command always exits 0: any
failure is logged to stderr and the operation passes through.`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func runHook(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("panic", fmt.Sprint(r)).Msg("hook failed, passing through")
		}
		err = nil
	}()

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		logging.Error().Err(err).Msg("unable to read hook event, passing through")
		return nil
	}

	ev, ok, err := nudge.DecodeHookPayload(data)
	if err != nil {
		logging.Error().Err(err).Msg("malformed hook event, passing through")
		return nil
	}
	if !ok {
		logging.Debug().Msg("hook or tool is not handled, passing through")
		return nil
	}

	cwd := ev.Cwd
	if cwd == "" {
		cwd = workingDir()
		ev.Cwd = cwd
	}

	registry := loadRegistry(cmd, cwd)
	resp := registry.Evaluate(cmd.Context(), ev)
	if resp.Reason != "" {
		logging.Warn().Str("reason", resp.Reason).Msg("evaluation abandoned, passing through")
	}
	logging.Info().
		Str("hook", string(ev.Hook)).
		Str("tool", ev.Tool).
		Str("session_id", ev.SessionID).
		Stringer("decision", resp.Decision).
		Int("rules", len(resp.Outcomes)).
		Msg("hook evaluated")

	if err := report.WriteHookResponse(cmd.OutOrStdout(), ev, resp); err != nil {
		logging.Error().Err(err).Msg("unable to write hook response")
	}
	return nil
}
