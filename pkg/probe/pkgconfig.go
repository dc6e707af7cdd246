package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/shell"
)

// Requirement is one "module [op version]" term of a pkg-config query.
type Requirement struct {
	Module  string
	Op      string
	Version string
}

func (r Requirement) String() string {
	if r.Op == "" {
		return r.Module
	}
	return r.Module + " " + r.Op + " " + r.Version
}

var comparisonOps = map[string]bool{
	"=": true, "==": true, "!=": true,
	"<": true, "<=": true, ">": true, ">=": true,
}

// ParseQuery splits a pkg-config query such as "lua >= 5.1.0 lua < 5.2.0"
// into its requirements.
func ParseQuery(query string) ([]Requirement, error) {
	fields := strings.Fields(query)
	var reqs []Requirement
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if comparisonOps[tok] {
			return nil, errors.Errorf("operator %q without module in query %q", tok, query)
		}
		req := Requirement{Module: tok}
		if i+1 < len(fields) && comparisonOps[fields[i+1]] {
			if i+2 >= len(fields) {
				return nil, errors.Errorf("missing version after %q in query %q", fields[i+1], query)
			}
			req.Op = fields[i+1]
			req.Version = fields[i+2]
			i += 2
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return nil, errors.New("empty pkg-config query")
	}
	return reqs, nil
}

// Modules returns the distinct module names of reqs in query order.
func Modules(reqs []Requirement) []string {
	var mods []string
	seen := map[string]bool{}
	for _, r := range reqs {
		if !seen[r.Module] {
			seen[r.Module] = true
			mods = append(mods, r.Module)
		}
	}
	return mods
}

// Satisfied reports whether version meets the requirement.
func (r Requirement) Satisfied(version string) (bool, error) {
	if r.Op == "" {
		return true, nil
	}
	have, err := semver.NewVersion(version)
	if err != nil {
		return false, errors.Wrapf(err, "invalid version %q of %s", version, r.Module)
	}
	want, err := semver.NewVersion(r.Version)
	if err != nil {
		return false, errors.Wrapf(err, "invalid version %q in requirement", r.Version)
	}

	c := have.Compare(want)
	switch r.Op {
	case "=", "==":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown operator %q", r.Op)
}

// CheckPkgConfig returns a probe that resolves query through pkg-config and
// records the resulting flags into the store called storeName (the
// dependency's own store when empty). On failure the dependency's define
// key is undefined.
func CheckPkgConfig(query, storeName string) Func {
	return func(ctx context.Context, bc *buildctx.Context, id string) bool {
		name := storeName
		if name == "" {
			name = buildctx.StorageKey(id)
		}
		store, err := resolvePkgConfig(ctx, bc, query)
		if err != nil {
			log.WithField("dependency", id).WithError(err).Debugf("pkg-config query %q failed", query)
			bc.Undefine(buildctx.DefineKey(id))
			return false
		}
		bc.Store(name).Merge(store)
		bc.Define(buildctx.DefineKey(id), "1")
		return true
	}
}

func resolvePkgConfig(ctx context.Context, bc *buildctx.Context, query string) (buildctx.Store, error) {
	tools := bc.Toolchain()
	if tools == nil {
		return buildctx.Store{}, errors.New("no toolchain configured")
	}

	reqs, err := ParseQuery(query)
	if err != nil {
		return buildctx.Store{}, err
	}
	modules := Modules(reqs)

	versions := map[string]string{}
	for _, mod := range modules {
		out, err := tools.PkgConfig(ctx, "--modversion", mod)
		if err != nil {
			return buildctx.Store{}, errors.Wrapf(err, "package %s not found", mod)
		}
		versions[mod] = strings.TrimSpace(out)
	}
	for _, r := range reqs {
		ok, err := r.Satisfied(versions[r.Module])
		if err != nil {
			// versions like 1.2.3.4 are left to pkg-config's own comparison
			log.WithError(err).Debugf("asking pkg-config whether %s holds", r)
			if _, existsErr := tools.PkgConfig(ctx, "--exists", r.String()); existsErr != nil {
				return buildctx.Store{}, errors.Wrapf(existsErr, "%s has version %s, want %s", r.Module, versions[r.Module], r)
			}
			continue
		}
		if !ok {
			return buildctx.Store{}, errors.Errorf("%s has version %s, want %s", r.Module, versions[r.Module], r)
		}
	}

	args := []string{"--cflags", "--libs"}
	if bc.Options.StaticBuild {
		args = append(args, "--static")
	}
	out, err := tools.PkgConfig(ctx, append(args, modules...)...)
	if err != nil {
		return buildctx.Store{}, errors.Wrap(err, "failed to query flags")
	}
	return ParseFlags(out)
}

// ParseFlags sorts compiler and linker flags, as printed by pkg-config, into
// a store.
func ParseFlags(output string) (buildctx.Store, error) {
	var s buildctx.Store
	fields, err := shell.Fields(strings.TrimSpace(output), func(string) string { return "" })
	if err != nil {
		return s, errors.Wrap(err, "failed to split pkg-config output")
	}

	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch {
		case strings.HasPrefix(f, "-I"):
			s.Includes = append(s.Includes, joinedValue(f, "-I", fields, &i))
		case strings.HasPrefix(f, "-D"):
			s.Defines = append(s.Defines, joinedValue(f, "-D", fields, &i))
		case strings.HasPrefix(f, "-L"):
			s.LibPath = append(s.LibPath, joinedValue(f, "-L", fields, &i))
		case strings.HasPrefix(f, "-l"):
			s.Lib = append(s.Lib, joinedValue(f, "-l", fields, &i))
		case f == "-framework":
			if i+1 < len(fields) {
				i++
				s.Framework = append(s.Framework, fields[i])
			}
		case strings.HasPrefix(f, "-Wl,"):
			s.LinkFlags = append(s.LinkFlags, f)
		default:
			s.CFlags = append(s.CFlags, f)
			s.LinkFlags = append(s.LinkFlags, f)
		}
	}
	return s, nil
}

// joinedValue returns the value of a flag written either as "-Ifoo" or "-I foo".
func joinedValue(f, prefix string, fields []string, i *int) string {
	if v := strings.TrimPrefix(f, prefix); v != "" {
		return v
	}
	if *i+1 < len(fields) {
		*i++
		return fields[*i]
	}
	return ""
}
