package buildctx

import "slices"

// Store is a named bucket of compiler and linker settings for one library,
// consumed later by the build through "use".
type Store struct {
	CFlags    []string `yaml:"cflags,omitempty"`
	LinkFlags []string `yaml:"linkflags,omitempty"`
	Lib       []string `yaml:"lib,omitempty"`
	LibPath   []string `yaml:"libpath,omitempty"`
	Includes  []string `yaml:"includes,omitempty"`
	Defines   []string `yaml:"defines,omitempty"`
	Framework []string `yaml:"framework,omitempty"`
}

// Merge appends the settings of other that s does not already hold.
func (s *Store) Merge(other Store) {
	s.CFlags = appendUnique(s.CFlags, other.CFlags...)
	s.LinkFlags = appendUnique(s.LinkFlags, other.LinkFlags...)
	s.Lib = appendUnique(s.Lib, other.Lib...)
	s.LibPath = appendUnique(s.LibPath, other.LibPath...)
	s.Includes = appendUnique(s.Includes, other.Includes...)
	s.Defines = appendUnique(s.Defines, other.Defines...)
	s.Framework = appendUnique(s.Framework, other.Framework...)
}

// Empty reports whether the store holds no settings.
func (s *Store) Empty() bool {
	return len(s.CFlags) == 0 && len(s.LinkFlags) == 0 && len(s.Lib) == 0 &&
		len(s.LibPath) == 0 && len(s.Includes) == 0 && len(s.Defines) == 0 &&
		len(s.Framework) == 0
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" || slices.Contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}
