package buildctx

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAndUndefine(t *testing.T) {
	ctx := New("linux", "/src")

	ctx.Define("HAVE_PTHREADS", "1")
	ctx.Define("HAVE_OSS_AUDIO_4FRONT", "1")
	assert.True(t, ctx.IsDefined("HAVE_OSS_AUDIO_4FRONT"))

	ctx.Undefine("HAVE_OSS_AUDIO_4FRONT")
	assert.False(t, ctx.IsDefined("HAVE_OSS_AUDIO_4FRONT"))
	snapshot := ctx.Defines()

	// idempotent
	ctx.Undefine("HAVE_OSS_AUDIO_4FRONT")
	assert.Equal(t, snapshot, ctx.Defines())

	want := []Define{
		{Key: "HAVE_PTHREADS", Value: "1"},
		{Key: "HAVE_OSS_AUDIO_4FRONT", Undefined: true},
	}
	if diff := cmp.Diff(want, ctx.Defines()); diff != "" {
		t.Errorf("Defines() mismatch (-want +got):\n%s", diff)
	}

	value, ok := ctx.DefineValue("HAVE_PTHREADS")
	require.True(t, ok)
	assert.Equal(t, "1", value)
}

func TestRedefineKeepsPosition(t *testing.T) {
	ctx := New("linux", "")
	ctx.Define("A", "1")
	ctx.Define("B", "1")
	ctx.Undefine("A")
	ctx.Define("A", "2")

	want := []Define{
		{Key: "A", Value: "2"},
		{Key: "B", Value: "1"},
	}
	if diff := cmp.Diff(want, ctx.Defines()); diff != "" {
		t.Errorf("Defines() mismatch (-want +got):\n%s", diff)
	}
}

func TestSatisfiedAndMessages(t *testing.T) {
	ctx := New("linux", "")
	assert.False(t, ctx.DependencySatisfied("lua"))

	ctx.MarkSatisfied("52deb")
	ctx.AddOptionalMessage("lua", "version found: 52deb")

	assert.True(t, ctx.DependencySatisfied("52deb"))
	assert.Equal(t, []string{"version found: 52deb"}, ctx.OptionalMessages("lua"))
	assert.Empty(t, ctx.OptionalMessages("iconv"))
}

func TestStores(t *testing.T) {
	ctx := New("linux", "")
	_, ok := ctx.LookupStore("pthreads")
	assert.False(t, ok)

	ctx.Store("pthreads").Merge(Store{CFlags: []string{"-D_REENTRANT"}, Lib: []string{"pthread"}})
	ctx.Store("pthreads").Merge(Store{Lib: []string{"pthread", ""}})
	ctx.Store("iconv")

	s, ok := ctx.LookupStore("pthreads")
	require.True(t, ok)
	assert.Equal(t, []string{"-D_REENTRANT"}, s.CFlags)
	assert.Equal(t, []string{"pthread"}, s.Lib)
	assert.False(t, s.Empty())
	assert.True(t, ctx.Store("iconv").Empty())
	assert.Equal(t, []string{"iconv", "pthreads"}, ctx.StoreNames())

	ctx.DeleteStore("pthreads")
	ctx.DeleteStore("missing")
	_, ok = ctx.LookupStore("pthreads")
	assert.False(t, ok)
	assert.Equal(t, []string{"iconv"}, ctx.StoreNames())
}

func TestDestOSFromGOOS(t *testing.T) {
	tests := map[string]string{
		"linux":   "linux",
		"darwin":  "darwin",
		"windows": "win32",
		"freebsd": "freebsd",
		"illumos": "sunos",
	}
	for goos, want := range tests {
		assert.Equal(t, want, DestOSFromGOOS(goos), goos)
	}
}

func TestInflector(t *testing.T) {
	tests := []struct {
		id         string
		defineKey  string
		storageKey string
	}{
		{"pthreads", "HAVE_PTHREADS", "pthreads"},
		{"oss-audio-4front", "HAVE_OSS_AUDIO_4FRONT", "oss_audio_4front"},
		{"libquvi4", "HAVE_LIBQUVI4", "libquvi4"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.defineKey, DefineKey(tt.id))
			assert.Equal(t, tt.storageKey, StorageKey(tt.id))
		})
	}
}

func TestWriteHeader(t *testing.T) {
	ctx := New("linux", "")
	ctx.Define("HAVE_PTHREADS", "1")
	ctx.Undefine("HAVE_OSS_AUDIO_4FRONT")
	ctx.Define("CONFIGURATION", `"--prefix=/usr"`)

	var buf bytes.Buffer
	require.NoError(t, ctx.WriteHeader(&buf))

	want := `/* Configuration header created by wafstrap - do not edit */
#ifndef W_CONFIG_H_WAF
#define W_CONFIG_H_WAF

#define HAVE_PTHREADS 1
/* #undef HAVE_OSS_AUDIO_4FRONT */
#define CONFIGURATION "--prefix=/usr"

#endif /* W_CONFIG_H_WAF */
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteHeader() mismatch (-want +got):\n%s", diff)
	}
}
