package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attunehq/nudge/config"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "check rule files and list the rules they define",
	Long: `Parses and compiles rule files, failing on the first error.

Without arguments every discoverable rule file is checked.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts := settings.RuleOptions()
	var (
		files []config.LoadedFile
		err   error
	)
	if len(args) > 0 {
		files, err = config.LoadPathsStrict(args, opts)
	} else {
		files, err = config.LoadAllStrict(workingDir(), opts)
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		_, _ = fmt.Fprintf(out, "%s: %d rules loaded\n", f.Path, len(f.Rules))
		for _, rule := range f.Rules {
			for _, entry := range rule.Entries {
				_, _ = fmt.Fprintf(out, "  - %s (%s, %s)\n", rule.Name, entry.Hook, entry.Action)
			}
		}
	}
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
		return &exitError{code: 1}
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintln(out, "No rule files found.")
	}
	return nil
}
