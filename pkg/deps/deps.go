// Package deps evaluates an ordered list of dependency declarations against
// a build context.
package deps

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/binary-install/wafstrap/pkg/probe"
)

// Dependency declares one optional or required feature.
type Dependency struct {
	// Name is the dependency identifier.
	Name string
	// Desc is the human readable name used in log output.
	Desc string
	Func probe.Func
	// Deps must all be satisfied before Func runs.
	Deps []string
	// DepsAny requires at least one satisfied entry.
	DepsAny []string
	// DepsNeg must all be unsatisfied.
	DepsNeg []string
	// Required makes absence fatal.
	Required bool
	// FailMsg is appended to the error for a missing required dependency.
	FailMsg string
}

// Result is the outcome of one dependency.
type Result struct {
	Name     string   `yaml:"name"`
	Desc     string   `yaml:"desc"`
	Found    bool     `yaml:"found"`
	Skipped  string   `yaml:"skipped,omitempty"`
	Messages []string `yaml:"messages,omitempty"`
}

// RequiredError reports a required or force-enabled dependency that was not found.
type RequiredError struct {
	Name    string
	Reason  string
	FailMsg string
}

func (e *RequiredError) Error() string {
	msg := fmt.Sprintf("dependency %s not found", e.Name)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.FailMsg != "" {
		msg += ": " + e.FailMsg
	}
	return msg
}

// Runner evaluates dependencies in declaration order.
type Runner struct {
	// Enable lists dependencies whose absence is fatal.
	Enable []string
	// Disable lists dependencies that are not probed.
	Disable []string
}

// Run probes every dependency in list. It stops at the first required
// dependency that is missing and returns the results gathered so far
// together with a *RequiredError.
func (r *Runner) Run(ctx context.Context, bc *buildctx.Context, list []Dependency) ([]Result, error) {
	results := make([]Result, 0, len(list))
	for _, dep := range list {
		res := r.check(ctx, bc, dep)
		results = append(results, res)

		if res.Found {
			continue
		}
		if dep.Required || slices.Contains(r.Enable, dep.Name) {
			return results, &RequiredError{Name: dep.Name, Reason: res.Skipped, FailMsg: dep.FailMsg}
		}
	}
	return results, nil
}

func (r *Runner) check(ctx context.Context, bc *buildctx.Context, dep Dependency) Result {
	res := Result{Name: dep.Name, Desc: dep.Desc}
	if res.Desc == "" {
		res.Desc = dep.Name
	}

	if reason := r.skipReason(bc, dep); reason != "" {
		bc.Undefine(buildctx.DefineKey(dep.Name))
		res.Skipped = reason
		log.Infof("Checking for %s: no (%s)", res.Desc, reason)
		return res
	}

	res.Found = dep.Func(ctx, bc, dep.Name)
	if res.Found {
		bc.MarkSatisfied(dep.Name)
	} else {
		// a composed probe may have defined the key before a later step failed
		bc.Undefine(buildctx.DefineKey(dep.Name))
	}
	res.Messages = bc.OptionalMessages(dep.Name)

	answer := "no"
	if res.Found {
		answer = "yes"
	}
	if len(res.Messages) > 0 {
		answer += " (" + strings.Join(res.Messages, ", ") + ")"
	}
	log.Infof("Checking for %s: %s", res.Desc, answer)
	return res
}

func (r *Runner) skipReason(bc *buildctx.Context, dep Dependency) string {
	if slices.Contains(r.Disable, dep.Name) {
		return "disabled"
	}
	for _, d := range dep.Deps {
		if !bc.DependencySatisfied(d) {
			return fmt.Sprintf("%s not found", d)
		}
	}
	if len(dep.DepsAny) > 0 && !slices.ContainsFunc(dep.DepsAny, bc.DependencySatisfied) {
		return fmt.Sprintf("none of %s found", strings.Join(dep.DepsAny, ", "))
	}
	for _, d := range dep.DepsNeg {
		if bc.DependencySatisfied(d) {
			return fmt.Sprintf("%s found", d)
		}
	}
	return ""
}
