package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/semgroup"
	"github.com/spf13/cobra"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/report"
	"github.com/attunehq/nudge/scan"
	"github.com/attunehq/nudge/sources/files"
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("follow-symlinks", false, "check files that are symlinks to other files")
	checkCmd.Flags().StringP("report-path", "r", "", "report file (use \"-\" for stdout)")
	checkCmd.Flags().StringP("report-format", "f", "", "report format (json, csv)")
	checkCmd.Flags().StringP("baseline-path", "b", "", "path to a JSON report with issues that can be ignored")
	checkCmd.Flags().StringP("ignore-path", "i", ".", "path to .nudgeignore file or folder containing one")
	checkCmd.Flags().Bool("ignore-nudge-allow", false, "ignore nudge:allow comments")
	checkCmd.Flags().Int("exit-code", 1, "exit code when issues have been found")
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "check existing files against the rules as if the agent were writing them",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	cwd := workingDir()
	registry := loadRegistry(cmd, cwd)

	baseline := loadBaselineFlag(cmd)
	ignorePath := mustGetStringFlag(cmd, "ignore-path")
	noColor := !useColor(cmd)
	start := time.Now()

	var issues []nudge.Issue
	for _, source := range args {
		root, err := filepath.Abs(source)
		if err != nil {
			return err
		}
		// Relative paths in issues are reported against the directory
		// being checked, or the parent of a single file.
		base := root
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			base = filepath.Dir(root)
		}

		checker := &scan.Checker{
			Registry:             registry,
			Root:                 base,
			Ignore:               scan.LoadIgnoreFiles(ignorePath, base),
			Baseline:             baseline,
			IgnoreAllowSignature: mustGetBoolFlag(cmd, "ignore-nudge-allow"),
		}
		src := &files.Files{
			Path:           root,
			FollowSymlinks: mustGetBoolFlag(cmd, "follow-symlinks"),
			MaxFileSize:    settings.MaxFileSize,
			Sema:           semgroup.NewGroup(cmd.Context(), int64(settings.Concurrency)),
		}

		found, err := checker.Run(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("check %s: %w", source, err)
		}
		issues = append(issues, found...)
	}

	for _, issue := range issues {
		issue.Print(cmd.OutOrStdout(), noColor)
	}
	if err := writeReport(cmd, issues); err != nil {
		return err
	}

	logging.Info().Msgf("checked in %s", time.Since(start).Round(time.Millisecond))
	if len(issues) == 0 {
		logging.Info().Msg("no issues found")
		return nil
	}
	logging.Warn().Msgf("issues found: %d", len(issues))
	return &exitError{code: mustGetIntFlag(cmd, "exit-code")}
}

func loadBaselineFlag(cmd *cobra.Command) []nudge.Issue {
	path := mustGetStringFlag(cmd, "baseline-path")
	if path == "" {
		return nil
	}
	baseline, err := scan.LoadBaseline(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("could not load baseline, all issues will be reported")
		return nil
	}
	return baseline
}

func writeReport(cmd *cobra.Command, issues []nudge.Issue) error {
	path := mustGetStringFlag(cmd, "report-path")
	format := mustGetStringFlag(cmd, "report-format")
	if path == "" && format == "" {
		return nil
	}
	if format == "" {
		format = report.FormatJSON
		if filepath.Ext(path) == ".csv" {
			format = report.FormatCSV
		}
	}
	reporter, err := report.New(format)
	if err != nil {
		return err
	}

	var w io.WriteCloser = nopCloser{cmd.OutOrStdout()}
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		w = f
	}
	defer w.Close()
	return reporter.Write(w, issues)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func mustGetIntFlag(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		logging.Fatal().Err(err).Msgf("could not get flag: %s", name)
	}
	return value
}
