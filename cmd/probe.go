package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/binary-install/wafstrap/pkg/checks"
	"github.com/binary-install/wafstrap/pkg/config"
	"github.com/binary-install/wafstrap/pkg/deps"
	"github.com/binary-install/wafstrap/pkg/spec"
	"github.com/binary-install/wafstrap/pkg/toolchain"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	// Flags for probe command
	probeLuaVer     string
	probeHeader     string
	probeOutputFile string
	probeCC         string
	probePkgConfig  string
	probeDestOS     string

	// newToolchain creates the toolchain probes run with. Tests replace it.
	newToolchain = func(cc, pkgConfig string) buildctx.Toolchain {
		return toolchain.NewHost(cc, pkgConfig)
	}
)

// ProbeCommand represents the probe command
var ProbeCommand = &cobra.Command{
	Use:   "probe",
	Short: "Probe the host for build dependencies",
	Long: `Probes the host for pthreads, iconv, Lua, OSS audio and Cocoa by compiling and
linking small test programs and querying pkg-config.

The discovered defines are written as a C configuration header when a header
path is configured, and the full result (defines and per-library compiler and
linker flags) can be written as YAML with --output.

Dependencies listed under 'enable' in the config, and required dependencies
such as pthreads, make the command fail when they are not found.`,
	Example: `  # Probe and print a summary
  wafstrap probe

  # Only try the Debian Lua 5.2 package
  wafstrap probe --lua-ver 52deb

  # Write config.h and a YAML report
  wafstrap probe --header build/config.h --output build/probe.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		if probeLuaVer != "" && !slices.Contains(checks.LuaTags(), probeLuaVer) {
			return fmt.Errorf("unknown --lua-ver %q, must be one of: %s", probeLuaVer, strings.Join(checks.LuaTags(), ", "))
		}
		if probeDestOS != "" {
			cfg.DestOS = spec.StringPtr(probeDestOS)
		}

		bc := cfg.newBuildContext(probeLuaVer)
		cc := firstNonEmpty(probeCC, spec.StringValue(cfg.CC))
		pkgConfig := firstNonEmpty(probePkgConfig, spec.StringValue(cfg.PkgConfig))
		bc.WithToolchain(newToolchain(cc, pkgConfig))

		log.Infof("Probing dependencies for %s", bc.DestOS)
		runner := &deps.Runner{Enable: cfg.Enable, Disable: cfg.Disable}
		results, runErr := runner.Run(cmd.Context(), bc, checks.Dependencies())

		if !quiet {
			displayProbeResults(cmd.OutOrStdout(), results)
		}

		header := firstNonEmpty(probeHeader, config.ResolvePath(cfg.BaseDir, spec.StringValue(cfg.Header)))
		if header != "" {
			if err := writeHeaderFile(bc, header); err != nil {
				return err
			}
			log.Infof("Configuration header written to %s", header)
		}

		if probeOutputFile != "" {
			if err := writeProbeReport(bc, results, probeOutputFile, cmd.OutOrStdout()); err != nil {
				return err
			}
		}

		if runErr != nil {
			return fmt.Errorf("probe failed: %w", runErr)
		}
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// displayProbeResults prints one line per dependency.
func displayProbeResults(w io.Writer, results []deps.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPENDENCY\tDESCRIPTION\tSTATUS")
	fmt.Fprintln(tw, "----------\t-----------\t------")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Desc, resultStatus(r))
	}
	tw.Flush()
}

func resultStatus(r deps.Result) string {
	switch {
	case r.Found:
		status := "✓ found"
		if len(r.Messages) > 0 {
			status += " (" + strings.Join(r.Messages, ", ") + ")"
		}
		return foundStyle.Render(status)
	case r.Skipped != "":
		return skippedStyle.Render("- skipped (" + r.Skipped + ")")
	default:
		return missingStyle.Render("✗ not found")
	}
}

func writeHeaderFile(bc *buildctx.Context, path string) error {
	var buf bytes.Buffer
	if err := bc.WriteHeader(&buf); err != nil {
		return fmt.Errorf("failed to render configuration header: %w", err)
	}
	return writeOutputFile(path, buf.Bytes())
}

// probeReport is the YAML document written by --output.
type probeReport struct {
	DestOS  string         `yaml:"dest_os"`
	Results []deps.Result  `yaml:"results"`
	Defines []reportDefine `yaml:"defines,omitempty"`
	Stores  []reportStore  `yaml:"stores,omitempty"`
}

type reportDefine struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value,omitempty"`
	Undef bool   `yaml:"undef,omitempty"`
}

type reportStore struct {
	Name           string `yaml:"name"`
	buildctx.Store `yaml:",inline"`
}

func newProbeReport(bc *buildctx.Context, results []deps.Result) *probeReport {
	report := &probeReport{DestOS: bc.DestOS, Results: results}
	for _, d := range bc.Defines() {
		report.Defines = append(report.Defines, reportDefine{Key: d.Key, Value: d.Value, Undef: d.Undefined})
	}
	for _, name := range bc.StoreNames() {
		s, _ := bc.LookupStore(name)
		if s.Empty() {
			continue
		}
		report.Stores = append(report.Stores, reportStore{Name: name, Store: *s})
	}
	return report
}

func writeProbeReport(bc *buildctx.Context, results []deps.Result, path string, stdout io.Writer) error {
	data, err := yaml.Marshal(newProbeReport(bc, results))
	if err != nil {
		return fmt.Errorf("failed to marshal probe report: %w", err)
	}
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := writeOutputFile(path, data); err != nil {
		return err
	}
	log.Infof("Probe report written to %s", path)
	return nil
}

// writeOutputFile writes data to path, creating parent directories.
func writeOutputFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	ProbeCommand.Flags().StringVar(&probeLuaVer, "lua-ver", "", "Only try this Lua version ("+strings.Join(checks.LuaTags(), ", ")+")")
	ProbeCommand.Flags().StringVar(&probeHeader, "header", "", "Write the configuration header to this file (default: header from config)")
	ProbeCommand.Flags().StringVarP(&probeOutputFile, "output", "o", "", "Write a YAML report to this file ('-' for stdout)")
	ProbeCommand.Flags().StringVar(&probeCC, "cc", "", "Compiler command (default: cc from config, $CC, or cc)")
	ProbeCommand.Flags().StringVar(&probePkgConfig, "pkg-config", "", "pkg-config executable (default: pkg_config from config, $PKG_CONFIG, or pkg-config)")
	ProbeCommand.Flags().StringVar(&probeDestOS, "dest-os", "", "Target operating system in waf naming (default: dest_os from config, or the host)")
}
