// Package spec defines the wafstrap configuration file.
package spec

// Config is the content of .config/wafstrap.yml.
//
// Minimal example:
//
//	schema: v1
//
// Complete example:
//
//	schema: v1
//	dest_os: linux
//	src_dir: .
//	cc: ccache cc
//	pkg_config: pkg-config
//	oss_conf: /etc/oss.conf
//	bootstrap_dir: .
//	mirror: https://github.com/waf-project/waf/releases/download/${NAME}/${NAME}
//	header: build/config.h
//	static_build: false
//	lua_ver: 52deb
//	enable: [lua]
//	disable: [cocoa]
type Config struct {
	// Schema version, currently "v1".
	Schema *string `yaml:"schema,omitempty" json:"schema,omitempty"`
	// DestOS overrides the target operating system in waf naming.
	DestOS *string `yaml:"dest_os,omitempty" json:"dest_os,omitempty"`
	// SrcDir is the project source directory; relative paths are resolved
	// against the directory holding .config.
	SrcDir *string `yaml:"src_dir,omitempty" json:"src_dir,omitempty"`
	// CC is the compiler command line.
	CC *string `yaml:"cc,omitempty" json:"cc,omitempty"`
	// PkgConfig is the pkg-config executable.
	PkgConfig *string `yaml:"pkg_config,omitempty" json:"pkg_config,omitempty"`
	// OSSConf is the shell file defining OSSLIBDIR.
	OSSConf *string `yaml:"oss_conf,omitempty" json:"oss_conf,omitempty"`
	// BootstrapDir is where the waf script is installed.
	BootstrapDir *string `yaml:"bootstrap_dir,omitempty" json:"bootstrap_dir,omitempty"`
	// Mirror replaces the download URL of the pinned release. It may use
	// ${NAME}, ${TOOL} and ${VERSION}. The SHA-256 stays pinned.
	Mirror *string `yaml:"mirror,omitempty" json:"mirror,omitempty"`
	// Header is the configuration header written by probe.
	Header *string `yaml:"header,omitempty" json:"header,omitempty"`
	// StaticBuild passes --static to pkg-config.
	StaticBuild *bool `yaml:"static_build,omitempty" json:"static_build,omitempty"`
	// LuaVer restricts the Lua probe to one version tag.
	LuaVer *string `yaml:"lua_ver,omitempty" json:"lua_ver,omitempty"`
	// Enable lists dependencies that must be found.
	Enable []string `yaml:"enable,omitempty" json:"enable,omitempty"`
	// Disable lists dependencies that are not probed.
	Disable []string `yaml:"disable,omitempty" json:"disable,omitempty"`
}

// SetDefaults sets default values for the Config
func (c *Config) SetDefaults() {
	if c.Schema == nil || *c.Schema == "" {
		c.Schema = StringPtr("v1")
	}
	if c.SrcDir == nil || *c.SrcDir == "" {
		c.SrcDir = StringPtr(".")
	}
	if c.BootstrapDir == nil || *c.BootstrapDir == "" {
		c.BootstrapDir = StringPtr(".")
	}
	if c.OSSConf == nil || *c.OSSConf == "" {
		c.OSSConf = StringPtr("/etc/oss.conf")
	}
	if c.StaticBuild == nil {
		c.StaticBuild = BoolPtr(false)
	}
}

// StringPtr returns a pointer to the string
func StringPtr(s string) *string {
	return &s
}

// StringValue safely dereferences a string pointer
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BoolPtr returns a pointer to the bool
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue safely dereferences a bool pointer
func BoolValue(b *bool) bool {
	return b != nil && *b
}
