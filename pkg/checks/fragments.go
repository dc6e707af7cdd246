package checks

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed fragments/pthreads.c
var pthreadsProgram string

//go:embed fragments/iconv.c
var iconvProgram string

//go:embed fragments/dlopen.c
var dlopenProgram string

// luaTemplate receives the companion quvi header and code.
//
//go:embed fragments/lua.c.tmpl
var luaTemplate string

//go:embed fragments/lua_libquvi4.c
var luaLibquvi4Code string

//go:embed fragments/lua_libquvi9.c
var luaLibquvi9Code string

//go:embed fragments/oss_audio.c
var ossAudioProgram string

//go:embed fragments/cocoa.m
var cocoaProgram string

type luaFragmentData struct {
	Header string
	Code   string
}

// LuaFragment renders the Lua test program with extra header and code lines
// spliced in.
func LuaFragment(header, code string) (string, error) {
	tmpl, err := template.New("lua.c").Parse(luaTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse lua fragment")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, luaFragmentData{Header: header, Code: code}); err != nil {
		return "", errors.Wrap(err, "failed to render lua fragment")
	}
	return buf.String(), nil
}
