package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/attunehq/nudge/pattern"
)

func init() {
	rootCmd.AddCommand(syntaxTreeCmd)
	syntaxTreeCmd.Flags().StringP("language", "l", "", "language to parse: "+strings.Join(pattern.SupportedLanguages(), ", "))
	_ = syntaxTreeCmd.MarkFlagRequired("language")
}

var syntaxTreeCmd = &cobra.Command{
	Use:   "syntaxtree -l LANGUAGE [FILE|CODE|-]",
	Short: "print the syntax tree of some code, for writing SyntaxTree queries",
	Long: `Parses code and prints every node with its field name and byte range.

The argument is a file path, literal code, or "-" to read stdin (the default).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSyntaxTree,
}

var (
	fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00b4d8"))
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func runSyntaxTree(cmd *cobra.Command, args []string) error {
	lang, err := pattern.ParseLanguage(mustGetStringFlag(cmd, "language"))
	if err != nil {
		return err
	}
	code, err := syntaxTreeInput(cmd, args)
	if err != nil {
		return err
	}

	tree, err := pattern.Parse(cmd.Context(), lang, code)
	if err != nil {
		return err
	}
	defer tree.Close()

	color := useColor(cmd)
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	out := cmd.OutOrStdout()
	for _, n := range pattern.Flatten(tree.RootNode()) {
		if !n.Named {
			continue
		}
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", n.Depth))
		if n.Field != "" {
			b.WriteString(style(fieldStyle, n.Field+":") + " ")
		}
		b.WriteString(style(kindStyle, n.Kind))
		b.WriteString(" " + style(dimStyle, "["+n.Span.String()+"]"))
		if text := n.Span.Text(code); len(text) <= 40 && !strings.Contains(text, "\n") {
			b.WriteString(" " + style(dimStyle, strconv.Quote(text)))
		}
		_, _ = fmt.Fprintln(out, b.String())
	}
	if tree.RootNode().HasError() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: the code has syntax errors, SyntaxTree matchers will not match it")
	}
	return nil
}

// syntaxTreeInput resolves the argument as a file, literal code, or stdin.
func syntaxTreeInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
		data, err := os.ReadFile(args[0])
		return string(data), err
	}
	return args[0], nil
}
