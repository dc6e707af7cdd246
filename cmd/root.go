package cmd

import (
	"io"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

const (
	// Default config file paths
	DefaultConfigPathYML  = ".config/wafstrap.yml"
	DefaultConfigPathYAML = ".config/wafstrap.yaml"
)

var (
	// Global flags
	configFile string
	verbose    bool
	quiet      bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "wafstrap",
	Short: "Bootstrap waf and probe the host for build dependencies",
	Long: `wafstrap downloads a pinned, checksum-verified release of the waf build system
and probes the host for the libraries a C/C++ project is configured against:
pthreads, iconv, Lua, OSS audio and Cocoa.

Probe results are written as a C configuration header and, optionally, as a
YAML report of the compiler and linker flags that were discovered.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), verbose, quiet)
		log.Debugf("Config file: %s", configFile)
	},
}

// setupLogging points apex/log at w. --verbose wins over --quiet.
func setupLogging(w io.Writer, verbose, quiet bool) {
	log.SetHandler(cli.New(w))
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func init() {
	cobra.EnableCommandSorting = false

	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to wafstrap config file (default: "+DefaultConfigPathYML+")")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")

	RootCmd.AddGroup(&cobra.Group{
		ID:    "workflow",
		Title: "Workflow Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "utility",
		Title: "Utility Commands:",
	})

	RootCmd.SetHelpCommandGroupID("utility")
	RootCmd.SetCompletionCommandGroupID("utility")

	BootstrapCommand.GroupID = "workflow"
	ProbeCommand.GroupID = "workflow"
	InitCommand.GroupID = "utility"
	CheckCommand.GroupID = "utility"
	HelpfulCommand.GroupID = "utility"

	// bootstrap before probe: probe results feed `waf configure`
	RootCmd.AddCommand(BootstrapCommand, ProbeCommand, InitCommand, CheckCommand, HelpfulCommand)
}
