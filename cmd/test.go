package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/report"
)

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.Flags().StringSlice("rule", nil, "only evaluate these rules (default all)")
	testCmd.Flags().String("tool", "", "tool name: Write, Edit, WebFetch or Bash (default inferred from the input flags)")
	testCmd.Flags().String("file", "", "file path the tool targets")
	testCmd.Flags().String("content", "", "content written by Write or Edit")
	testCmd.Flags().String("content-file", "", "read the content from this file")
	testCmd.Flags().String("url", "", "url fetched by WebFetch")
	testCmd.Flags().String("command", "", "command run by Bash")
	testCmd.Flags().String("prompt", "", "user prompt, selects the UserPromptSubmit hook")
	testCmd.Flags().String("cwd", "", "working directory of the simulated agent (default current directory)")
	testCmd.MarkFlagsMutuallyExclusive("content", "content-file")
	testCmd.MarkFlagsMutuallyExclusive("prompt", "tool")
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "evaluate rules against a synthetic hook event",
	Example: `  nudge test --rule no-inline-imports --file src/main.rs --content-file main.rs
  nudge test --tool Bash --command "git push --force"
  nudge test --prompt "deploy to production"`,
	Args: cobra.NoArgs,
	RunE: runTest,
}

var (
	decisionStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5d445"))
)

func runTest(cmd *cobra.Command, _ []string) error {
	cwd := mustGetStringFlag(cmd, "cwd")
	if cwd == "" {
		cwd = workingDir()
	}

	ev, err := testEvent(cmd, cwd)
	if err != nil {
		return err
	}

	registry := loadRegistry(cmd, cwd)
	if names := mustGetStringSliceFlag(cmd, "rule"); len(names) > 0 {
		if registry, err = registry.Only(names...); err != nil {
			return err
		}
	}

	resp := registry.Evaluate(cmd.Context(), ev)
	color := useColor(cmd)
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Result: %s\n", style(decisionStyle, resp.Decision.String()))
	if resp.Reason != "" {
		_, _ = fmt.Fprintf(out, "Reason: %s\n", resp.Reason)
	}
	if resp.Decision == nudge.Passthrough {
		_, _ = fmt.Fprintln(out, "No rule fired for the provided input.")
		return nil
	}

	for _, o := range resp.Outcomes {
		_, _ = fmt.Fprintf(out, "Rule: %s (%s)\n", style(ruleStyle, o.Rule), o.Action)
	}
	_, _ = fmt.Fprintln(out)
	if annotations := report.Annotations(resp.Violations()); len(annotations) > 0 {
		_, _ = fmt.Fprintln(out, report.Snippet(ev.Text, annotations, color))
	}
	_, _ = fmt.Fprintln(out, resp.Message)
	return nil
}

// testEvent builds the event described by the flags.
func testEvent(cmd *cobra.Command, cwd string) (nudge.Event, error) {
	if cmd.Flags().Changed("prompt") {
		return nudge.PromptEvent(mustGetStringFlag(cmd, "prompt"), cwd), nil
	}

	content := mustGetStringFlag(cmd, "content")
	if path := mustGetStringFlag(cmd, "content-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nudge.Event{}, fmt.Errorf("read content file: %w", err)
		}
		content = string(data)
	}

	tool := mustGetStringFlag(cmd, "tool")
	if tool == "" {
		switch {
		case cmd.Flags().Changed("url"):
			tool = nudge.ToolWebFetch
		case cmd.Flags().Changed("command"):
			tool = nudge.ToolBash
		case cmd.Flags().Changed("content") || cmd.Flags().Changed("content-file") || cmd.Flags().Changed("file"):
			tool = nudge.ToolWrite
		default:
			return nudge.Event{}, errors.New("specify --prompt, or --tool/--file/--content/--url/--command")
		}
	}

	var text string
	switch tool {
	case nudge.ToolWrite, nudge.ToolEdit:
		text = content
	case nudge.ToolWebFetch:
		text = mustGetStringFlag(cmd, "url")
	case nudge.ToolBash:
		text = mustGetStringFlag(cmd, "command")
	}

	file := mustGetStringFlag(cmd, "file")
	if file != "" && !filepath.IsAbs(file) {
		file = filepath.Join(cwd, file)
	}
	return nudge.ToolEvent(tool, file, text, cwd), nil
}
