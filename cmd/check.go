package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/checks"
	"github.com/binary-install/wafstrap/pkg/deps"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	// Flags for check command
	checkShowConfig bool
)

// CheckCommand represents the check command
var CheckCommand = &cobra.Command{
	Use:   "check",
	Short: "Check and validate a wafstrap config file",
	Long: `Checks a wafstrap configuration file by:
- Validating the configuration format
- Verifying lua_ver and the enable/disable lists name known values
- Listing the dependencies probe would check and how each is treated

This makes it easy to validate your configuration without compiling anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Running check command...")

		cfg, err := loadConfig(configFile)
		if err != nil {
			log.WithError(err).Error("Config validation failed")
			return err
		}
		log.Info("✓ Config validation passed")

		w := cmd.OutOrStdout()
		if checkShowConfig {
			data, err := yaml.Marshal(cfg.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config to YAML: %w", err)
			}
			fmt.Fprintln(w, string(data))
		}

		displayDependencyPlan(w, checks.Dependencies(), cfg.Enable, cfg.Disable)
		log.Info("✓ Check completed successfully")
		return nil
	},
}

// displayDependencyPlan prints how each dependency will be treated by probe.
func displayDependencyPlan(w io.Writer, list []deps.Dependency, enable, disable []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPENDENCY\tMODE\tREQUIRES")
	fmt.Fprintln(tw, "----------\t----\t--------")
	for _, d := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, dependencyMode(d, enable, disable), dependencyRequires(d))
	}
	tw.Flush()
}

func dependencyMode(d deps.Dependency, enable, disable []string) string {
	switch {
	case slices.Contains(disable, d.Name):
		return "disabled"
	case d.Required:
		return "required"
	case slices.Contains(enable, d.Name):
		return "enabled"
	default:
		return "auto"
	}
}

func dependencyRequires(d deps.Dependency) string {
	var parts []string
	parts = append(parts, d.Deps...)
	if len(d.DepsAny) > 0 {
		parts = append(parts, "any of "+strings.Join(d.DepsAny, "|"))
	}
	for _, n := range d.DepsNeg {
		parts = append(parts, "!"+n)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func init() {
	CheckCommand.Flags().BoolVar(&checkShowConfig, "show-config", false, "Print the effective configuration with defaults applied")
}
