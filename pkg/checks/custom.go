// Package checks implements the dependency probes that cannot be expressed
// as a single compile or pkg-config check.
package checks

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/apex/log"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/binary-install/wafstrap/pkg/probe"
)

var pthreadCFlags = map[string]string{
	"linux":   "-D_REENTRANT",
	"freebsd": "-D_THREAD_SAFE",
	"netbsd":  "-D_THREAD_SAFE",
	"openbsd": "-D_THREAD_SAFE",
	"win32":   "-DPTW32_STATIC_LIB",
}

// PthreadCFlag returns the thread-safety define for destOS, or "".
func PthreadCFlag(destOS string) string {
	return pthreadCFlags[destOS]
}

// CheckPthreads links the pthreads fragment against pthreadGC2 and pthread,
// first with the platform define and then without it.
func CheckPthreads(ctx context.Context, bc *buildctx.Context, id string) bool {
	libs := probe.Libs("pthreadGC2", "pthread")

	withFlag := probe.CC{Fragment: pthreadsProgram}
	if flag := PthreadCFlag(bc.DestOS); flag != "" {
		withFlag.CFlags = []string{flag}
	}
	noFlag := probe.CC{Fragment: pthreadsProgram}

	for _, cc := range []probe.CC{withFlag, noFlag} {
		if probe.CheckLibs(libs, cc.Linking())(ctx, bc, id) {
			return true
		}
	}
	return false
}

// CheckIconv links the iconv fragment against iconv alone, then against the
// dynamic loading library plus iconv.
func CheckIconv(ctx context.Context, bc *buildctx.Context, id string) bool {
	var libdl []string
	if s, ok := bc.LookupStore("libdl"); ok {
		libdl = s.Lib
	}
	candidates := [][]string{
		{"iconv"},
		append(slices.Clone(libdl), "iconv"),
	}
	cc := probe.CC{Fragment: iconvProgram}
	return probe.CheckLibs(candidates, cc.Linking())(ctx, bc, id)
}

// LuaVersion is one Lua candidate: the uselib tag and its pkg-config query.
type LuaVersion struct {
	Tag   string
	Query string
}

// LuaVersions lists the Lua candidates in priority order.
var LuaVersions = []LuaVersion{
	{Tag: "51", Query: "lua >= 5.1.0 lua < 5.2.0"},
	{Tag: "51deb", Query: "lua5.1 >= 5.1.0"},
	{Tag: "luajit", Query: "luajit >= 2.0.0"},
	// libquvi links with 5.1, so 5.2 comes last
	{Tag: "52", Query: "lua >= 5.2.0"},
	{Tag: "52deb", Query: "lua5.2 >= 5.2.0"},
}

// LuaTags returns the tags of LuaVersions in order.
func LuaTags() []string {
	tags := make([]string, len(LuaVersions))
	for i, v := range LuaVersions {
		tags[i] = v.Tag
	}
	return tags
}

// luaCandidates applies the LuaVer option.
func luaCandidates(only string) []LuaVersion {
	if only == "" {
		return LuaVersions
	}
	var out []LuaVersion
	for _, v := range LuaVersions {
		if v.Tag == only {
			out = append(out, v)
		}
	}
	return out
}

// CheckLua tries each Lua candidate until its pkg-config query resolves and
// the test program runs. The test program also exercises libquvi when one of
// its variants was found earlier. The matching tag is marked satisfied.
func CheckLua(ctx context.Context, bc *buildctx.Context, id string) bool {
	var (
		quviStores []string
		header     string
		code       string
	)
	switch {
	case bc.DependencySatisfied("libquvi4"):
		quviStores = []string{"libquvi4"}
		header = "#include <quvi/quvi.h>"
		code = luaLibquvi4Code
	case bc.DependencySatisfied("libquvi9"):
		quviStores = []string{"libquvi9"}
		header = "#include <quvi.h>"
		code = luaLibquvi9Code
	}

	fragment, err := LuaFragment(header, code)
	if err != nil {
		log.WithError(err).Error("cannot build lua test program")
		return false
	}

	for _, v := range luaCandidates(bc.Options.LuaVer) {
		check := probe.Compose(
			probe.CheckPkgConfig(v.Query, v.Tag),
			probe.CheckCC(probe.CC{
				Fragment: fragment,
				Use:      append([]string{v.Tag}, quviStores...),
				Execute:  true,
			}),
		)
		if check(ctx, bc, id) {
			bc.MarkSatisfied(v.Tag)
			bc.AddOptionalMessage(id, "version found: "+v.Tag)
			return true
		}
		// pkg-config may have succeeded before the test program failed
		bc.DeleteStore(v.Tag)
	}
	bc.Undefine(buildctx.DefineKey(id))
	return false
}

// CheckOSS4Front probes the 4Front OSS headers below the directory named by
// OSSLIBDIR. Without that directory the define for id is cleared so the
// native sys/soundcard.h cannot produce a false positive.
func CheckOSS4Front(ctx context.Context, bc *buildctx.Context, id string) bool {
	libDir := OSSLibDir(ctx, bc.Options.OSSConf)
	if libDir == "" {
		bc.Undefine(buildctx.DefineKey(id))
		return false
	}

	includeDir := filepath.Join(libDir, "include")
	cc := probe.CC{
		HeaderName: []string{filepath.Join(includeDir, "sys", "soundcard.h")},
		Defines:    []string{`PATH_DEV_DSP="/dev/dsp"`, `PATH_DEV_MIXER="/dev/mixer"`},
		CFlags:     []string{"-I" + includeDir},
		Fragment:   ossAudioProgram,
	}
	return probe.CheckCC(cc)(ctx, bc, id)
}

// CheckCocoa compiles an Objective-C program against Cocoa, IOKit and OpenGL.
func CheckCocoa(ctx context.Context, bc *buildctx.Context, id string) bool {
	cc := probe.CC{
		Fragment:        cocoaProgram,
		CompileFilename: "test.m",
		Frameworks:      []string{"Cocoa", "IOKit", "OpenGL"},
		Includes:        []string{bc.SrcDir},
		LinkFlags:       []string{"-fobjc-arc"},
	}
	return probe.CheckCC(cc)(ctx, bc, id)
}
