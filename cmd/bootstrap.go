package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/bootstrap"
	"github.com/binary-install/wafstrap/pkg/config"
	"github.com/binary-install/wafstrap/pkg/fetch"
	"github.com/binary-install/wafstrap/pkg/install"
	"github.com/binary-install/wafstrap/pkg/release"
	"github.com/binary-install/wafstrap/pkg/spec"
	"github.com/binary-install/wafstrap/pkg/verify"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Flags for bootstrap command
	bootstrapDir        string
	bootstrapMirror     string
	bootstrapNoProgress bool
)

var (
	// bootstrapRelease is the release installed by the bootstrap command.
	bootstrapRelease = release.Pinned
	// isTerminal reports whether fd is a terminal. Tests replace it.
	isTerminal = term.IsTerminal
)

// BootstrapCommand represents the bootstrap command
var BootstrapCommand = &cobra.Command{
	Use:   "bootstrap",
	Short: "Download and verify the pinned waf release",
	Long: `Downloads the pinned waf release, verifies its SHA-256 digest and installs it
as an executable named 'waf'.

If 'waf' already exists and reports the pinned version, nothing is downloaded.
On a digest mismatch nothing is written and the command exits with status 1.`,
	Example: `  # Install waf into the current directory
  wafstrap bootstrap

  # Install waf into build/
  wafstrap bootstrap --dir build

  # Download from a GitHub mirror (GITHUB_TOKEN is sent when set)
  wafstrap bootstrap --mirror 'https://github.com/waf-project/waf/releases/download/${NAME}/${NAME}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}

		dir := bootstrapDir
		if dir == "" {
			dir = config.ResolvePath(cfg.BaseDir, spec.StringValue(cfg.BootstrapDir))
		}
		dir, err = install.ResolveDir(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve bootstrap directory: %w", err)
		}
		log.Debugf("Bootstrap directory: %s", dir)

		rel := bootstrapRelease
		if mirror := firstNonEmpty(bootstrapMirror, spec.StringValue(cfg.Mirror)); mirror != "" {
			if err := (&spec.Config{Mirror: &mirror}).Validate(nil, nil); err != nil {
				return fmt.Errorf("invalid --mirror: %w", err)
			}
			log.Infof("Using mirror %s", mirror)
			rel.URLTemplate = mirror
		}

		b := bootstrap.New(rel, dir)
		var bar *progressbar.ProgressBar
		if !bootstrapNoProgress && !quiet && isTerminal(int(os.Stderr.Fd())) {
			b.Progress = newDownloadProgress(&bar, rel.Name)
		}

		result, err := b.Run(cmd.Context())
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return reportBootstrapError(cmd.OutOrStdout(), err)
		}
		log.WithField("sha256", result.SHA256).Debugf("waf ready at %s", result.Path)
		return nil
	},
}

// newDownloadProgress returns a fetch.ProgressFunc drawing a byte progress
// bar, created once the content length is known.
func newDownloadProgress(bar **progressbar.ProgressBar, desc string) fetch.ProgressFunc {
	return func(downloaded, total int64) {
		if *bar == nil {
			*bar = progressbar.DefaultBytes(total, desc)
		}
		_ = (*bar).Set64(downloaded)
	}
}

// reportBootstrapError prints both digests for a checksum mismatch.
func reportBootstrapError(w io.Writer, err error) error {
	var mismatch *verify.MismatchError
	if !errors.As(err, &mismatch) {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	fmt.Fprintln(w, "The checksum of the downloaded file does not match!")
	fmt.Fprintf(w, " - got:      %s\n", mismatch.Got)
	fmt.Fprintf(w, " - expected: %s\n", mismatch.Expected)
	fmt.Fprintln(w, "Please download and verify the file manually.")
	return fmt.Errorf("bootstrap failed: %w", err)
}

func init() {
	BootstrapCommand.Flags().StringVarP(&bootstrapDir, "dir", "d", "", "Directory to install waf into (default: bootstrap_dir from config, or .)")
	BootstrapCommand.Flags().StringVar(&bootstrapMirror, "mirror", "", "Download URL template replacing the release location (default: mirror from config)")
	BootstrapCommand.Flags().BoolVar(&bootstrapNoProgress, "no-progress", false, "Do not draw a download progress bar")
}
