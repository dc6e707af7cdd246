// Package faketool provides an in-memory buildctx.Toolchain for tests.
package faketool

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/binary-install/wafstrap/pkg/buildctx"
)

// Package is a pkg-config module known to the fake.
type Package struct {
	Version string
	Flags   string
}

// Toolchain records every call and answers from its fields.
type Toolchain struct {
	// CompileFunc decides whether a compile succeeds; nil accepts everything.
	CompileFunc func(job buildctx.CompileJob) error
	// ExecuteFunc decides whether a test program runs; nil accepts everything.
	ExecuteFunc func(path string) error
	// Packages are the modules pkg-config knows about.
	Packages map[string]Package

	Jobs           []buildctx.CompileJob
	Executed       []string
	PkgConfigCalls [][]string
}

var _ buildctx.Toolchain = (*Toolchain)(nil)

// Compile implements buildctx.Toolchain.
func (f *Toolchain) Compile(ctx context.Context, job buildctx.CompileJob) error {
	f.Jobs = append(f.Jobs, job)
	if f.CompileFunc == nil {
		return nil
	}
	return f.CompileFunc(job)
}

// Execute implements buildctx.Toolchain.
func (f *Toolchain) Execute(ctx context.Context, path string) error {
	f.Executed = append(f.Executed, path)
	if f.ExecuteFunc == nil {
		return nil
	}
	return f.ExecuteFunc(path)
}

// PkgConfig implements buildctx.Toolchain for --modversion and
// --cflags/--libs queries.
func (f *Toolchain) PkgConfig(ctx context.Context, args ...string) (string, error) {
	f.PkgConfigCalls = append(f.PkgConfigCalls, slices.Clone(args))
	if len(args) > 0 && args[0] == "--exists" {
		return "", f.exists(args[1:])
	}

	var modules []string
	modversion := false
	for _, a := range args {
		switch {
		case a == "--modversion":
			modversion = true
		case strings.HasPrefix(a, "--"):
		default:
			modules = append(modules, a)
		}
	}

	var out []string
	for _, mod := range modules {
		pkg, ok := f.Packages[mod]
		if !ok {
			return "", fmt.Errorf("Package %s was not found in the pkg-config search path", mod)
		}
		if modversion {
			out = append(out, pkg.Version)
		} else if pkg.Flags != "" {
			out = append(out, pkg.Flags)
		}
	}
	if modversion {
		return strings.Join(out, "\n") + "\n", nil
	}
	return strings.Join(out, " ") + "\n", nil
}

// exists answers --exists for "module [op version]" arguments.
func (f *Toolchain) exists(reqs []string) error {
	for _, req := range reqs {
		fields := strings.Fields(req)
		pkg, ok := f.Packages[fields[0]]
		if !ok {
			return fmt.Errorf("Package %s was not found in the pkg-config search path", fields[0])
		}
		if len(fields) < 3 {
			continue
		}
		c := CompareVersions(pkg.Version, fields[2])
		var held bool
		switch fields[1] {
		case "=", "==":
			held = c == 0
		case "!=":
			held = c != 0
		case "<":
			held = c < 0
		case "<=":
			held = c <= 0
		case ">":
			held = c > 0
		case ">=":
			held = c >= 0
		}
		if !held {
			return fmt.Errorf("Requested '%s' but version of %s is %s", req, fields[0], pkg.Version)
		}
	}
	return nil
}

// CompareVersions compares dotted numeric versions segment by segment.
// Missing segments count as zero.
func CompareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < max(len(as), len(bs)); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		if x != y {
			return cmp.Compare(x, y)
		}
	}
	return 0
}

// QueriedModules returns the modules passed to --modversion, in call order.
func (f *Toolchain) QueriedModules() []string {
	var mods []string
	for _, call := range f.PkgConfigCalls {
		if len(call) == 2 && call[0] == "--modversion" {
			mods = append(mods, call[1])
		}
	}
	return mods
}

// HasLib reports whether job links lib.
func HasLib(job buildctx.CompileJob, lib string) bool {
	return slices.Contains(job.Libs, lib)
}

// HasCFlag reports whether job compiles with flag.
func HasCFlag(job buildctx.CompileJob, flag string) bool {
	return slices.Contains(job.CFlags, flag)
}
