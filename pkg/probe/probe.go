// Package probe provides the building blocks dependency checks are composed
// from: compile a fragment, try candidate libraries, query pkg-config, and
// AND-compose probes.
//
// A probe never returns an error for an absent dependency. It reports false
// and leaves the build context without a define for that dependency.
package probe

import (
	"context"

	"github.com/binary-install/wafstrap/pkg/buildctx"
)

// Func detects one dependency, recording what it finds into bc.
type Func func(ctx context.Context, bc *buildctx.Context, id string) bool

// LibProbe builds a probe that links against one candidate library set.
type LibProbe func(libs []string) Func

// Compose returns a probe that succeeds when every probe succeeds, evaluated
// in order and stopping at the first failure.
func Compose(probes ...Func) Func {
	return func(ctx context.Context, bc *buildctx.Context, id string) bool {
		for _, p := range probes {
			if !p(ctx, bc, id) {
				return false
			}
		}
		return true
	}
}

// CheckLibs tries each candidate library set in order; the first candidate
// whose probe succeeds wins.
func CheckLibs(candidates [][]string, probe LibProbe) Func {
	return func(ctx context.Context, bc *buildctx.Context, id string) bool {
		for _, libs := range candidates {
			if probe(libs)(ctx, bc, id) {
				return true
			}
		}
		return false
	}
}

// Libs turns single library names into one-element candidate sets.
func Libs(names ...string) [][]string {
	out := make([][]string, len(names))
	for i, name := range names {
		out[i] = []string{name}
	}
	return out
}

// CheckDestOS succeeds when the target operating system is one of oses.
func CheckDestOS(oses ...string) Func {
	return func(ctx context.Context, bc *buildctx.Context, id string) bool {
		for _, os := range oses {
			if bc.DestOS == os {
				return true
			}
		}
		return false
	}
}
