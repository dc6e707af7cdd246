package toolchain

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/shell"
)

// Host runs the compiler and pkg-config installed on this machine.
type Host struct {
	// CC is the compiler command line, e.g. "cc" or "ccache clang".
	CC string
	// PkgConfigPath is the pkg-config executable.
	PkgConfigPath string
}

var _ buildctx.Toolchain = (*Host)(nil)

// NewHost returns a Host toolchain. Empty arguments fall back to $CC and
// $PKG_CONFIG, then to "cc" and "pkg-config".
func NewHost(cc, pkgConfig string) *Host {
	if cc == "" {
		cc = os.Getenv("CC")
	}
	if cc == "" {
		cc = "cc"
	}
	if pkgConfig == "" {
		pkgConfig = os.Getenv("PKG_CONFIG")
	}
	if pkgConfig == "" {
		pkgConfig = "pkg-config"
	}
	return &Host{CC: cc, PkgConfigPath: pkgConfig}
}

// CompileArgs returns the compiler arguments for job, without the compiler itself.
func CompileArgs(job buildctx.CompileJob) []string {
	var args []string
	if filepath.Ext(job.Source) == ".m" {
		args = append(args, "-x", "objective-c")
	}
	args = append(args, job.CFlags...)
	for _, inc := range job.Includes {
		args = append(args, "-I"+inc)
	}
	for _, def := range job.Defines {
		args = append(args, "-D"+def)
	}
	args = append(args, job.Source, "-o", job.Output)
	for _, dir := range job.LibPaths {
		args = append(args, "-L"+dir)
	}
	args = append(args, job.LinkFlags...)
	for _, lib := range job.Libs {
		args = append(args, "-l"+lib)
	}
	for _, fw := range job.Frameworks {
		args = append(args, "-framework", fw)
	}
	return args
}

// Compile implements buildctx.Toolchain.
func (h *Host) Compile(ctx context.Context, job buildctx.CompileJob) error {
	argv, err := shell.Fields(h.CC, nil)
	if err != nil {
		return errors.Wrapf(err, "invalid compiler command %q", h.CC)
	}
	if len(argv) == 0 {
		return errors.New("no compiler configured")
	}
	argv = append(argv, CompileArgs(job)...)
	_, err = run(ctx, job.Dir, argv)
	return err
}

// Execute implements buildctx.Toolchain.
func (h *Host) Execute(ctx context.Context, path string) error {
	_, err := run(ctx, filepath.Dir(path), []string{path})
	return err
}

// PkgConfig implements buildctx.Toolchain.
func (h *Host) PkgConfig(ctx context.Context, args ...string) (string, error) {
	return run(ctx, "", append([]string{h.PkgConfigPath}, args...))
}

func run(ctx context.Context, dir string, argv []string) (string, error) {
	log.Debugf("Running: %s", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.String(), errors.Wrapf(err, "%s failed", argv[0])
		}
		return stdout.String(), errors.Wrapf(err, "%s failed: %s", argv[0], msg)
	}
	return stdout.String(), nil
}
