package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
)

// DefaultCompileFilename is the fragment file name used when CC does not set one.
const DefaultCompileFilename = "test.c"

// CC describes a compile probe.
type CC struct {
	// Fragment is the program source.
	Fragment string
	// HeaderName lists headers included ahead of Fragment.
	HeaderName []string
	// CompileFilename overrides the fragment file name; its extension selects
	// the language (e.g. "test.m" for Objective-C).
	CompileFilename string

	CFlags     []string
	LinkFlags  []string
	Defines    []string
	Includes   []string
	Libs       []string
	Frameworks []string

	// Use names uselib stores whose settings are added to the compile.
	Use []string
	// Execute runs the program after a successful link; a non-zero exit
	// counts as not found.
	Execute bool
}

// CheckCC returns a probe that compiles and links cc.
// On success the settings of cc are recorded into the store named after the
// dependency and its define key is set to 1.
func CheckCC(cc CC) Func {
	return func(ctx context.Context, bc *buildctx.Context, id string) bool {
		return cc.check(ctx, bc, id)
	}
}

// Linking returns a LibProbe that adds the candidate libraries to cc.
func (cc CC) Linking() LibProbe {
	return func(libs []string) Func {
		c := cc
		c.Libs = append(slices.Clone(cc.Libs), libs...)
		return CheckCC(c)
	}
}

// Source returns the full program text, headers first.
func (cc CC) Source() string {
	var b strings.Builder
	for _, h := range cc.HeaderName {
		fmt.Fprintf(&b, "#include <%s>\n", h)
	}
	b.WriteString(cc.Fragment)
	return b.String()
}

func (cc CC) check(ctx context.Context, bc *buildctx.Context, id string) bool {
	logger := log.WithField("dependency", id)

	tools := bc.Toolchain()
	if tools == nil {
		logger.Warn("no toolchain configured")
		return false
	}

	dir, err := os.MkdirTemp("", "wafstrap-probe-")
	if err != nil {
		logger.WithError(err).Warn("failed to create scratch directory")
		return false
	}
	defer os.RemoveAll(dir)

	filename := cc.CompileFilename
	if filename == "" {
		filename = DefaultCompileFilename
	}

	job := cc.job(bc)
	job.Dir = dir
	job.Source = filepath.Join(dir, filename)
	job.Output = filepath.Join(dir, "testprog")
	job.Fragment = cc.Source()

	if err := os.WriteFile(job.Source, []byte(job.Fragment), 0644); err != nil {
		logger.WithError(err).Warn("failed to write fragment")
		return false
	}

	if err := tools.Compile(ctx, job); err != nil {
		logger.WithError(err).Debug("compile failed")
		return false
	}

	if cc.Execute {
		if err := tools.Execute(ctx, job.Output); err != nil {
			logger.WithError(err).Debug("test program failed")
			return false
		}
	}

	bc.Store(buildctx.StorageKey(id)).Merge(buildctx.Store{
		CFlags:    cc.CFlags,
		LinkFlags: cc.LinkFlags,
		Lib:       cc.Libs,
		Includes:  cc.Includes,
		Defines:   cc.Defines,
		Framework: cc.Frameworks,
	})
	bc.Define(buildctx.DefineKey(id), "1")
	return true
}

// job assembles the compile settings from cc and the stores it uses.
func (cc CC) job(bc *buildctx.Context) buildctx.CompileJob {
	job := buildctx.CompileJob{
		CFlags:     slices.Clone(cc.CFlags),
		LinkFlags:  slices.Clone(cc.LinkFlags),
		Defines:    slices.Clone(cc.Defines),
		Includes:   slices.Clone(cc.Includes),
		Libs:       slices.Clone(cc.Libs),
		Frameworks: slices.Clone(cc.Frameworks),
	}
	for _, name := range cc.Use {
		s, ok := bc.LookupStore(name)
		if !ok {
			continue
		}
		job.CFlags = append(job.CFlags, s.CFlags...)
		job.LinkFlags = append(job.LinkFlags, s.LinkFlags...)
		job.Defines = append(job.Defines, s.Defines...)
		job.Includes = append(job.Includes, s.Includes...)
		job.Libs = append(job.Libs, s.Lib...)
		job.LibPaths = append(job.LibPaths, s.LibPath...)
		job.Frameworks = append(job.Frameworks, s.Framework...)
	}
	return job
}
