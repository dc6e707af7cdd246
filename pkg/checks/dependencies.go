package checks

import (
	"github.com/binary-install/wafstrap/pkg/deps"
	"github.com/binary-install/wafstrap/pkg/probe"
)

// CheckLibdl finds the library providing dlopen, if any. The chosen
// libraries end up in store "libdl", which CheckIconv reads.
var CheckLibdl = probe.CheckLibs(
	[][]string{{}, {"dl"}},
	probe.CC{Fragment: dlopenProgram}.Linking(),
)

// CheckLibquvi4 and CheckLibquvi9 detect the two libquvi variants the Lua
// probe can link with.
var (
	CheckLibquvi4 = probe.CheckPkgConfig("libquvi >= 0.4.1", "")
	CheckLibquvi9 = probe.CheckPkgConfig("libquvi-0.9 >= 0.9.0", "")
)

// Dependencies returns the dependency list probed by the probe command, in
// evaluation order.
func Dependencies() []deps.Dependency {
	return []deps.Dependency{
		{Name: "os-darwin", Desc: "darwin target", Func: probe.CheckDestOS("darwin")},
		{Name: "libdl", Desc: "dynamic loader", Func: CheckLibdl},
		{Name: "pthreads", Desc: "POSIX threads", Func: CheckPthreads, Required: true,
			FailMsg: "a pthreads implementation is required"},
		{Name: "iconv", Desc: "iconv", Func: CheckIconv, Required: true,
			FailMsg: "Unable to find iconv which should be part of a standard compilation environment."},
		{Name: "libquvi4", Desc: "libquvi 0.4.x support", Func: CheckLibquvi4},
		{Name: "libquvi9", Desc: "libquvi 0.9.x support", Func: CheckLibquvi9, DepsNeg: []string{"libquvi4"}},
		{Name: "lua", Desc: "Lua", Func: CheckLua},
		{Name: "oss-audio-4front", Desc: "OSS (4Front Technologies)", Func: CheckOSS4Front, DepsNeg: []string{"os-darwin"}},
		{Name: "cocoa", Desc: "Cocoa", Func: CheckCocoa, Deps: []string{"os-darwin"}},
	}
}

// Names returns the identifiers of Dependencies.
func Names() []string {
	list := Dependencies()
	names := make([]string, len(list))
	for i, d := range list {
		names[i] = d.Name
	}
	return names
}
