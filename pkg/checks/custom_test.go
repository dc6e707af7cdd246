package checks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/binary-install/wafstrap/internal/testutil/faketool"
	"github.com/binary-install/wafstrap/pkg/buildctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLink = errors.New("link failed")

func newContext(destOS string, tools *faketool.Toolchain) *buildctx.Context {
	return buildctx.New(destOS, "/src/project").WithToolchain(tools)
}

type combo struct {
	cflag string
	lib   string
}

func combos(jobs []buildctx.CompileJob) []combo {
	var out []combo
	for _, j := range jobs {
		c := combo{lib: strings.Join(j.Libs, " ")}
		if len(j.CFlags) > 0 {
			c.cflag = j.CFlags[0]
		}
		out = append(out, c)
	}
	return out
}

func TestCheckPthreads(t *testing.T) {
	t.Run("linux tries the define first and all four combinations", func(t *testing.T) {
		tools := &faketool.Toolchain{
			CompileFunc: func(job buildctx.CompileJob) error { return errLink },
		}
		bc := newContext("linux", tools)

		assert.False(t, CheckPthreads(context.Background(), bc, "pthreads"))
		assert.Equal(t, []combo{
			{"-D_REENTRANT", "pthreadGC2"},
			{"-D_REENTRANT", "pthread"},
			{"", "pthreadGC2"},
			{"", "pthread"},
		}, combos(tools.Jobs))
		assert.False(t, bc.IsDefined("HAVE_PTHREADS"))
	})

	t.Run("falls back to no define", func(t *testing.T) {
		tools := &faketool.Toolchain{
			CompileFunc: func(job buildctx.CompileJob) error {
				if faketool.HasCFlag(job, "-D_REENTRANT") || !faketool.HasLib(job, "pthread") {
					return errLink
				}
				return nil
			},
		}
		bc := newContext("linux", tools)

		require.True(t, CheckPthreads(context.Background(), bc, "pthreads"))
		assert.Len(t, tools.Jobs, 4)
		s, ok := bc.LookupStore("pthreads")
		require.True(t, ok)
		assert.Empty(t, s.CFlags)
		assert.Equal(t, []string{"pthread"}, s.Lib)
		assert.True(t, bc.IsDefined("HAVE_PTHREADS"))
	})

	t.Run("first success wins", func(t *testing.T) {
		tools := &faketool.Toolchain{}
		bc := newContext("freebsd", tools)

		require.True(t, CheckPthreads(context.Background(), bc, "pthreads"))
		assert.Equal(t, []combo{{"-D_THREAD_SAFE", "pthreadGC2"}}, combos(tools.Jobs))
	})
}

func TestPthreadCFlag(t *testing.T) {
	assert.Equal(t, "-D_REENTRANT", PthreadCFlag("linux"))
	assert.Equal(t, "-D_THREAD_SAFE", PthreadCFlag("openbsd"))
	assert.Equal(t, "-DPTW32_STATIC_LIB", PthreadCFlag("win32"))
	assert.Equal(t, "", PthreadCFlag("darwin"))
}

func TestCheckIconv(t *testing.T) {
	tools := &faketool.Toolchain{
		CompileFunc: func(job buildctx.CompileJob) error {
			if len(job.Libs) == 2 {
				return nil
			}
			return errLink
		},
	}
	bc := newContext("linux", tools)
	bc.Store("libdl").Merge(buildctx.Store{Lib: []string{"dl"}})

	require.True(t, CheckIconv(context.Background(), bc, "iconv"))
	require.Len(t, tools.Jobs, 2)
	assert.Equal(t, []string{"iconv"}, tools.Jobs[0].Libs)
	assert.Equal(t, []string{"dl", "iconv"}, tools.Jobs[1].Libs)
	assert.Contains(t, tools.Jobs[0].Fragment, "iconv_open")
}

func TestCheckIconvWithoutLibdl(t *testing.T) {
	tools := &faketool.Toolchain{
		CompileFunc: func(job buildctx.CompileJob) error { return errLink },
	}
	bc := newContext("linux", tools)

	assert.False(t, CheckIconv(context.Background(), bc, "iconv"))
	require.Len(t, tools.Jobs, 2)
	assert.Equal(t, []string{"iconv"}, tools.Jobs[1].Libs)
}

func TestCheckLibdl(t *testing.T) {
	tools := &faketool.Toolchain{
		CompileFunc: func(job buildctx.CompileJob) error {
			if faketool.HasLib(job, "dl") {
				return nil
			}
			return errLink
		},
	}
	bc := newContext("linux", tools)

	require.True(t, CheckLibdl(context.Background(), bc, "libdl"))
	s, ok := bc.LookupStore("libdl")
	require.True(t, ok)
	assert.Equal(t, []string{"dl"}, s.Lib)
}

func luaTools() *faketool.Toolchain {
	return &faketool.Toolchain{
		Packages: map[string]faketool.Package{
			"lua":    {Version: "5.1.5", Flags: "-I/usr/include/lua -llua"},
			"lua5.1": {Version: "5.1.5", Flags: "-I/usr/include/lua5.1 -llua5.1"},
			"lua5.2": {Version: "5.2.4", Flags: "-I/usr/include/lua5.2 -llua5.2"},
			"luajit": {Version: "2.0.5", Flags: "-I/usr/include/luajit-2.0 -lluajit-5.1"},
		},
	}
}

func TestCheckLuaRestrictedVersion(t *testing.T) {
	tools := luaTools()
	bc := newContext("linux", tools)
	bc.Options.LuaVer = "52deb"

	require.True(t, CheckLua(context.Background(), bc, "lua"))
	assert.Equal(t, []string{"lua5.2"}, tools.QueriedModules())

	assert.True(t, bc.DependencySatisfied("52deb"))
	assert.Equal(t, []string{"version found: 52deb"}, bc.OptionalMessages("lua"))
	require.Len(t, tools.Jobs, 1)
	assert.Equal(t, []string{"lua5.2"}, tools.Jobs[0].Libs)
	assert.Len(t, tools.Executed, 1)
}

func TestCheckLuaPriorityOrder(t *testing.T) {
	tools := luaTools()
	tools.CompileFunc = func(job buildctx.CompileJob) error {
		if faketool.HasLib(job, "luajit-5.1") {
			return nil
		}
		return errLink
	}
	bc := newContext("linux", tools)

	require.True(t, CheckLua(context.Background(), bc, "lua"))
	assert.Equal(t, []string{"lua", "lua5.1", "luajit"}, tools.QueriedModules())
	assert.True(t, bc.DependencySatisfied("luajit"))
	assert.False(t, bc.DependencySatisfied("51"))
	assert.Equal(t, []string{"version found: luajit"}, bc.OptionalMessages("lua"))
	for _, failed := range []string{"51", "51deb"} {
		_, ok := bc.LookupStore(failed)
		assert.False(t, ok, "store %s", failed)
	}
}

func TestCheckLuaCompileFailureLeavesNoTrace(t *testing.T) {
	tools := luaTools()
	tools.CompileFunc = func(buildctx.CompileJob) error { return errLink }
	bc := newContext("linux", tools)
	bc.Options.LuaVer = "52deb"

	assert.False(t, CheckLua(context.Background(), bc, "lua"))
	assert.Equal(t, []string{"lua5.2"}, tools.QueriedModules())
	require.Len(t, tools.Jobs, 1)

	assert.False(t, bc.IsDefined("HAVE_LUA"))
	_, ok := bc.LookupStore("52deb")
	assert.False(t, ok)
	assert.False(t, bc.DependencySatisfied("52deb"))
	assert.Empty(t, bc.OptionalMessages("lua"))
}

func TestCheckLuaNotFound(t *testing.T) {
	tools := &faketool.Toolchain{}
	bc := newContext("linux", tools)

	assert.False(t, CheckLua(context.Background(), bc, "lua"))
	assert.Equal(t, []string{"lua", "lua5.1", "luajit", "lua", "lua5.2"}, tools.QueriedModules())
	assert.Empty(t, tools.Jobs)
	assert.False(t, bc.IsDefined("HAVE_LUA"))
}

func TestCheckLuaUnknownVersionTriesNothing(t *testing.T) {
	tools := luaTools()
	bc := newContext("linux", tools)
	bc.Options.LuaVer = "53"

	assert.False(t, CheckLua(context.Background(), bc, "lua"))
	assert.Empty(t, tools.PkgConfigCalls)
}

func TestCheckLuaWithQuvi(t *testing.T) {
	tests := []struct {
		name       string
		satisfied  string
		wantHeader string
		wantCode   string
		wantLib    string
	}{
		{"libquvi4", "libquvi4", "#include <quvi/quvi.h>", "quvi_init", "quvi"},
		{"libquvi9", "libquvi9", "#include <quvi.h>", "quvi_new", "quvi-0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := luaTools()
			bc := newContext("linux", tools)
			bc.Options.LuaVer = "51"
			bc.MarkSatisfied(tt.satisfied)
			bc.Store(tt.satisfied).Merge(buildctx.Store{Lib: []string{tt.wantLib}})

			require.True(t, CheckLua(context.Background(), bc, "lua"))
			require.Len(t, tools.Jobs, 1)
			job := tools.Jobs[0]
			assert.Contains(t, job.Fragment, tt.wantHeader)
			assert.Contains(t, job.Fragment, tt.wantCode)
			assert.Equal(t, []string{"lua", tt.wantLib}, job.Libs)
		})
	}
}

func TestLuaFragmentWithoutQuvi(t *testing.T) {
	src, err := LuaFragment("", "")
	require.NoError(t, err)
	assert.Contains(t, src, "luaL_newstate")
	assert.NotContains(t, src, "quvi")
	assert.NotContains(t, src, "{{")
}

func TestLuaTags(t *testing.T) {
	assert.Equal(t, []string{"51", "51deb", "luajit", "52", "52deb"}, LuaTags())
}

func writeOSSConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oss.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOSSLibDir(t *testing.T) {
	t.Setenv("OSSLIBDIR", "")

	conf := writeOSSConf(t, "# OSS settings\nOSSETCDIR=/usr/lib/oss/etc\nOSSLIBDIR=/usr/lib/oss\n")
	assert.Equal(t, "/usr/lib/oss", OSSLibDir(context.Background(), conf))

	missing := filepath.Join(t.TempDir(), "nope.conf")
	assert.Equal(t, "", OSSLibDir(context.Background(), missing))

	unset := writeOSSConf(t, "OSSETCDIR=/usr/lib/oss/etc\n")
	assert.Equal(t, "", OSSLibDir(context.Background(), unset))

	padded := writeOSSConf(t, "OSSLIBDIR=\"/opt/oss \t \"\n")
	assert.Equal(t, "/opt/oss", OSSLibDir(context.Background(), padded))
}

func TestCheckOSS4FrontWithoutLibDir(t *testing.T) {
	t.Setenv("OSSLIBDIR", "")

	tools := &faketool.Toolchain{}
	bc := newContext("linux", tools)
	bc.Options.OSSConf = writeOSSConf(t, "OSSETCDIR=/usr/lib/oss/etc\n")
	bc.Define("HAVE_OSS_AUDIO_4FRONT", "1")

	assert.False(t, CheckOSS4Front(context.Background(), bc, "oss-audio-4front"))
	assert.False(t, bc.IsDefined("HAVE_OSS_AUDIO_4FRONT"))
	first := bc.Defines()

	assert.False(t, CheckOSS4Front(context.Background(), bc, "oss-audio-4front"))
	assert.Equal(t, first, bc.Defines())
	assert.Empty(t, tools.Jobs)
}

func TestCheckOSS4Front(t *testing.T) {
	t.Setenv("OSSLIBDIR", "")

	tools := &faketool.Toolchain{}
	bc := newContext("linux", tools)
	bc.Options.OSSConf = writeOSSConf(t, "OSSLIBDIR=/usr/lib/oss\n")

	require.True(t, CheckOSS4Front(context.Background(), bc, "oss-audio-4front"))
	require.Len(t, tools.Jobs, 1)
	job := tools.Jobs[0]
	assert.True(t, strings.HasPrefix(job.Fragment, "#include </usr/lib/oss/include/sys/soundcard.h>\n"))
	assert.Equal(t, []string{"-I/usr/lib/oss/include"}, job.CFlags)
	assert.Equal(t, []string{`PATH_DEV_DSP="/dev/dsp"`, `PATH_DEV_MIXER="/dev/mixer"`}, job.Defines)
	assert.True(t, bc.IsDefined("HAVE_OSS_AUDIO_4FRONT"))

	s, ok := bc.LookupStore("oss_audio_4front")
	require.True(t, ok)
	assert.Equal(t, []string{"-I/usr/lib/oss/include"}, s.CFlags)
}

func TestCheckCocoa(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths below are POSIX")
	}
	tools := &faketool.Toolchain{}
	bc := newContext("darwin", tools)

	require.True(t, CheckCocoa(context.Background(), bc, "cocoa"))
	require.Len(t, tools.Jobs, 1)
	job := tools.Jobs[0]
	assert.Equal(t, "test.m", filepath.Base(job.Source))
	assert.Equal(t, []string{"Cocoa", "IOKit", "OpenGL"}, job.Frameworks)
	assert.Equal(t, []string{"/src/project"}, job.Includes)
	assert.Equal(t, []string{"-fobjc-arc"}, job.LinkFlags)
	assert.Contains(t, job.Fragment, "NSApplicationLoad")
	assert.True(t, bc.IsDefined("HAVE_COCOA"))
}
