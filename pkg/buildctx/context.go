// Package buildctx holds the configuration state that dependency probes read
// from and record into.
//
// A Context is created once per configure run and passed by pointer to every
// probe. It is not safe for concurrent use; probes run sequentially.
package buildctx

import (
	"runtime"
	"sort"
)

// Options are user-supplied switches that influence individual probes.
type Options struct {
	// LuaVer restricts the Lua probe to a single candidate tag ("51", "52deb", ...).
	LuaVer string
	// StaticBuild adds --static to pkg-config queries.
	StaticBuild bool
	// OSSConf is the shell file defining OSSLIBDIR; empty means /etc/oss.conf.
	OSSConf string
}

// Define is one entry of the configuration header.
type Define struct {
	Key   string
	Value string
	// Undefined marks a key that was explicitly removed.
	Undefined bool
}

// Context accumulates the facts discovered about the host.
type Context struct {
	// DestOS is the target operating system in waf naming (linux, darwin, win32, ...).
	DestOS string
	// SrcDir is the project source directory.
	SrcDir  string
	Options Options

	tools     Toolchain
	stores    map[string]*Store
	defines   []Define
	defIndex  map[string]int
	satisfied map[string]bool
	messages  map[string][]string
}

// New creates an empty Context for destOS.
func New(destOS, srcDir string) *Context {
	return &Context{
		DestOS:    destOS,
		SrcDir:    srcDir,
		stores:    map[string]*Store{},
		defIndex:  map[string]int{},
		satisfied: map[string]bool{},
		messages:  map[string][]string{},
	}
}

// HostOS returns the running operating system in waf naming.
func HostOS() string {
	return DestOSFromGOOS(runtime.GOOS)
}

// DestOSFromGOOS maps a Go GOOS value to waf's DEST_OS naming.
func DestOSFromGOOS(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "solaris", "illumos":
		return "sunos"
	default:
		return goos
	}
}

// Store returns the uselib store called name, creating it if needed.
func (c *Context) Store(name string) *Store {
	s, ok := c.stores[name]
	if !ok {
		s = &Store{}
		c.stores[name] = s
	}
	return s
}

// LookupStore returns the store called name if it has been recorded.
func (c *Context) LookupStore(name string) (*Store, bool) {
	s, ok := c.stores[name]
	return s, ok
}

// DeleteStore drops the store called name.
func (c *Context) DeleteStore(name string) {
	delete(c.stores, name)
}

// StoreNames returns the names of all recorded stores, sorted.
func (c *Context) StoreNames() []string {
	names := make([]string, 0, len(c.stores))
	for name := range c.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Define sets key to value. Redefining a key keeps its original position.
func (c *Context) Define(key, value string) {
	d := Define{Key: key, Value: value}
	if i, ok := c.defIndex[key]; ok {
		c.defines[i] = d
		return
	}
	c.defIndex[key] = len(c.defines)
	c.defines = append(c.defines, d)
}

// Undefine removes any value for key and records it as explicitly undefined.
// Calling it repeatedly leaves the same state.
func (c *Context) Undefine(key string) {
	d := Define{Key: key, Undefined: true}
	if i, ok := c.defIndex[key]; ok {
		c.defines[i] = d
		return
	}
	c.defIndex[key] = len(c.defines)
	c.defines = append(c.defines, d)
}

// IsDefined reports whether key currently holds a value.
func (c *Context) IsDefined(key string) bool {
	_, ok := c.DefineValue(key)
	return ok
}

// DefineValue returns the value of key if it is defined.
func (c *Context) DefineValue(key string) (string, bool) {
	i, ok := c.defIndex[key]
	if !ok || c.defines[i].Undefined {
		return "", false
	}
	return c.defines[i].Value, true
}

// Defines returns all header entries in insertion order.
func (c *Context) Defines() []Define {
	out := make([]Define, len(c.defines))
	copy(out, c.defines)
	return out
}

// DependencySatisfied reports whether id has been marked satisfied.
func (c *Context) DependencySatisfied(id string) bool {
	return c.satisfied[id]
}

// MarkSatisfied records id as satisfied.
func (c *Context) MarkSatisfied(id string) {
	c.satisfied[id] = true
}

// AddOptionalMessage attaches an informational message to id.
func (c *Context) AddOptionalMessage(id, msg string) {
	c.messages[id] = append(c.messages[id], msg)
}

// OptionalMessages returns the messages recorded for id.
func (c *Context) OptionalMessages(id string) []string {
	return c.messages[id]
}
