// Package bootstrap downloads a pinned build-tool release, verifies its
// digest and installs it as an executable.
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/fetch"
	"github.com/binary-install/wafstrap/pkg/httpclient"
	"github.com/binary-install/wafstrap/pkg/install"
	"github.com/binary-install/wafstrap/pkg/release"
	"github.com/binary-install/wafstrap/pkg/verify"
	"github.com/pkg/errors"
)

// VersionFunc returns the output of running the tool at path with --version.
type VersionFunc func(ctx context.Context, path string) (string, error)

// Bootstrapper installs Release into Dir.
type Bootstrapper struct {
	Release release.Release
	Dir     string

	// Client is used for the download. Defaults to httpclient.New().
	Client *http.Client
	// Progress, if set, receives download progress.
	Progress fetch.ProgressFunc
	// VersionOf queries an existing tool. Defaults to running it.
	VersionOf VersionFunc
}

// Result describes a completed bootstrap.
type Result struct {
	Path    string
	Skipped bool
	SHA256  string
}

// New creates a Bootstrapper for r writing into dir.
func New(r release.Release, dir string) *Bootstrapper {
	return &Bootstrapper{
		Release: r,
		Dir:     dir,
	}
}

// Path returns the location of the installed tool.
func (b *Bootstrapper) Path() string {
	return filepath.Join(b.Dir, b.Release.Tool())
}

// Run makes sure the pinned release is present in Dir.
//
// A digest mismatch is returned as *verify.MismatchError and leaves the
// filesystem untouched.
func (b *Bootstrapper) Run(ctx context.Context) (*Result, error) {
	path := b.Path()
	tool := b.Release.Tool()

	if b.hasPinnedVersion(ctx, path) {
		log.Infof("Found '%s', skipping download.", tool)
		digest, err := verify.ComputeFileChecksum(path)
		if err != nil {
			return nil, err
		}
		return &Result{Path: path, Skipped: true, SHA256: digest}, nil
	}

	url, err := b.Release.URL()
	if err != nil {
		return nil, err
	}

	client := b.Client
	if client == nil {
		client = httpclient.New()
	}

	log.Infof("Downloading %s...", url)
	data, err := fetch.BytesWithProgress(ctx, client, url, b.Progress)
	if err != nil {
		return nil, err
	}

	digest, err := verify.VerifyChecksum(data, b.Release.SHA256)
	if err != nil {
		return nil, err
	}

	if err := install.WriteExecutable(path, data); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}
	log.Info("Checksum verified.")

	return &Result{Path: path, SHA256: digest}, nil
}

// hasPinnedVersion reports whether path exists and reports the pinned version.
func (b *Bootstrapper) hasPinnedVersion(ctx context.Context, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	versionOf := b.VersionOf
	if versionOf == nil {
		versionOf = runVersion
	}

	output, err := versionOf(ctx, path)
	if err != nil {
		log.WithError(err).Warnf("Could not query version of existing %s", path)
		return false
	}

	if !b.Release.MatchesVersionOutput(output) {
		log.Debugf("Existing %s reports %q, want version %s", path, output, b.Release.Version())
		return false
	}
	return true
}

func runVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", errors.Wrapf(err, "failed to run %s --version", path)
	}
	return string(out), nil
}
