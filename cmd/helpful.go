package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Style definitions
var (
	// Color profile detection
	profile = colorprofile.Detect(os.Stdout, os.Environ())

	// Styles with adaptive colors based on terminal capabilities
	headerStyle = func() lipgloss.Style {
		if profile == colorprofile.TrueColor || profile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))
		}
		return lipgloss.NewStyle().Bold(true)
	}()

	separatorStyle = func() lipgloss.Style {
		if profile == colorprofile.TrueColor || profile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
		}
		return lipgloss.NewStyle().Faint(true)
	}()

	foundStyle   = statusStyle("42")
	missingStyle = statusStyle("203")
	skippedStyle = lipgloss.NewStyle().Faint(true)
)

// statusStyle colors probe results when the terminal supports it.
func statusStyle(color string) lipgloss.Style {
	if profile == colorprofile.TrueColor || profile == colorprofile.ANSI256 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return lipgloss.NewStyle()
}

// HelpfulCommand prints help for every command on one page.
var HelpfulCommand = &cobra.Command{
	Use:    "helpful",
	Short:  "Display comprehensive help for all commands",
	Long:   `Displays an index of all wafstrap commands followed by the help of each one.`,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		writeAllHelp(cmd.OutOrStdout(), cmd.Root())
		return nil
	},
}

// writeAllHelp writes an index of visible commands and then their help pages.
func writeAllHelp(w io.Writer, root *cobra.Command) {
	cmds := visibleCommands(root)

	fmt.Fprintln(w, headerStyle.Render("# "+root.Name()))
	fmt.Fprintln(w)
	for _, c := range cmds[1:] {
		fmt.Fprintf(w, "  %-24s %s\n", c.CommandPath(), c.Short)
	}

	for _, c := range cmds {
		fmt.Fprintln(w)
		fmt.Fprintln(w, separatorStyle.Render(strings.Repeat("─", 80)))
		if c != root {
			fmt.Fprintln(w, headerStyle.Render("## "+c.CommandPath()))
		}
		fmt.Fprintln(w)
		c.SetOut(w)
		_ = c.Help()
	}
}

// visibleCommands returns root and its descendants in depth-first order,
// leaving out hidden commands and the generated help and completion ones.
func visibleCommands(root *cobra.Command) []*cobra.Command {
	out := []*cobra.Command{root}
	for _, c := range root.Commands() {
		if c.Hidden || slices.Contains([]string{"help", "completion"}, c.Name()) {
			continue
		}
		out = append(out, visibleCommands(c)...)
	}
	return out
}
