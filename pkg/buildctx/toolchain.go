package buildctx

import "context"

// CompileJob is one compile-and-link attempt of a source fragment.
type CompileJob struct {
	// Dir is the scratch directory holding Source.
	Dir string
	// Source is the path of the fragment file, Output the program to produce.
	Source string
	Output string
	// Fragment is the source text written to Source.
	Fragment string

	CFlags     []string
	LinkFlags  []string
	Defines    []string
	Includes   []string
	Libs       []string
	LibPaths   []string
	Frameworks []string
}

// Toolchain runs the host tools probes depend on.
type Toolchain interface {
	// Compile compiles and links job.Source into job.Output.
	Compile(ctx context.Context, job CompileJob) error
	// Execute runs a program produced by Compile.
	Execute(ctx context.Context, path string) error
	// PkgConfig runs pkg-config with args and returns its standard output.
	PkgConfig(ctx context.Context, args ...string) (string, error)
}

// WithToolchain sets the toolchain probes use and returns c.
func (c *Context) WithToolchain(t Toolchain) *Context {
	c.tools = t
	return c
}

// Toolchain returns the configured toolchain.
func (c *Context) Toolchain() Toolchain {
	return c.tools
}
