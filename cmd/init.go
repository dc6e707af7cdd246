package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/checks"
	"github.com/binary-install/wafstrap/pkg/spec"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	// Flags for init command
	initDestOS     string
	initLuaVer     string
	initHeader     string
	initEnable     []string
	initDisable    []string
	initOutputFile string
	initForce      bool // Skip confirmation when overwriting existing files
)

// promptForConfirmation prompts the user for confirmation and returns true if they confirm
func promptForConfirmation(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// InitCommand represents the init command
var InitCommand = &cobra.Command{
	Use:   "init",
	Short: "Generate a wafstrap config file",
	Long: `Initializes a wafstrap configuration file (.config/wafstrap.yml) from flags,
validating every value before it is written.`,
	Example: `  # Write the default config
  wafstrap init

  # Restrict Lua to LuaJIT and write config.h on probe
  wafstrap init --lua-ver luajit --header build/config.h

  # Require Lua, never probe OSS
  wafstrap init --enable lua --disable oss-audio-4front

  # Print the config instead of writing it
  wafstrap init -o -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Infof("Running init command...")

		cfg := &spec.Config{
			Schema:  spec.StringPtr("v1"),
			Enable:  initEnable,
			Disable: initDisable,
		}
		if initDestOS != "" {
			cfg.DestOS = spec.StringPtr(initDestOS)
		}
		if initLuaVer != "" {
			cfg.LuaVer = spec.StringPtr(initLuaVer)
		}
		if initHeader != "" {
			cfg.Header = spec.StringPtr(initHeader)
		}

		if err := cfg.Validate(checks.Names(), checks.LuaTags()); err != nil {
			log.WithError(err).Error("invalid config")
			return fmt.Errorf("invalid config: %w", err)
		}

		log.Debug("Marshalling config to YAML")
		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			log.WithError(err).Error("Failed to marshal config to YAML")
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}

		header := "# wafstrap configuration\n# dependencies: " + strings.Join(checks.Names(), ", ") +
			"\n# lua_ver: " + strings.Join(checks.LuaTags(), ", ") + "\n"
		yamlData = append([]byte(header), yamlData...)

		if initOutputFile == "" || initOutputFile == "-" {
			log.Debug("Writing config YAML to stdout")
			fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
			return nil
		}

		log.Infof("Writing config YAML to file: %s", initOutputFile)
		if _, err := os.Stat(initOutputFile); err == nil {
			if !initForce {
				message := fmt.Sprintf("File %s already exists. Overwrite?", initOutputFile)
				if !promptForConfirmation(message) {
					log.Info("Operation cancelled by user")
					return fmt.Errorf("operation cancelled: file %s already exists", initOutputFile)
				}
			}
			log.Infof("Overwriting existing file: %s", initOutputFile)
		}

		if err := writeOutputFile(initOutputFile, yamlData); err != nil {
			log.WithError(err).Errorf("Failed to write config to file: %s", initOutputFile)
			return err
		}
		log.Infof("Config successfully written to %s", initOutputFile)
		return nil
	},
}

func init() {
	InitCommand.Flags().StringVar(&initDestOS, "dest-os", "", "Target operating system in waf naming (default: the host)")
	InitCommand.Flags().StringVar(&initLuaVer, "lua-ver", "", "Only try this Lua version")
	InitCommand.Flags().StringVar(&initHeader, "header", "", "Configuration header written by probe")
	InitCommand.Flags().StringSliceVar(&initEnable, "enable", nil, "Dependencies that must be found")
	InitCommand.Flags().StringSliceVar(&initDisable, "disable", nil, "Dependencies that are not probed")
	InitCommand.Flags().StringVarP(&initOutputFile, "output", "o", DefaultConfigPathYML, "Write config to file instead of stdout (use '-' for stdout)")
	InitCommand.Flags().BoolVar(&initForce, "force", false, "Skip confirmation when overwriting existing files")

	_ = InitCommand.RegisterFlagCompletionFunc("lua-ver", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return checks.LuaTags(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = InitCommand.RegisterFlagCompletionFunc("enable", completeDependencies)
	_ = InitCommand.RegisterFlagCompletionFunc("disable", completeDependencies)
}

func completeDependencies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return checks.Names(), cobra.ShellCompDirectiveNoFileComp
}
