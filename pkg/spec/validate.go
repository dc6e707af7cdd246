package spec

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Validate checks the configuration against the known dependency names and
// Lua version tags.
func (c *Config) Validate(dependencies, luaTags []string) error {
	if c.Schema != nil && *c.Schema != "" && *c.Schema != "v1" {
		return fmt.Errorf("unsupported schema %q, want v1", *c.Schema)
	}

	if err := CommandSafeString(StringValue(c.CC), "cc"); err != nil {
		return err
	}
	if err := CommandSafeString(StringValue(c.PkgConfig), "pkg_config"); err != nil {
		return err
	}

	if m := StringValue(c.Mirror); m != "" && !strings.HasPrefix(m, "https://") && !strings.HasPrefix(m, "http://") {
		return fmt.Errorf("mirror must be an http or https URL: %s", m)
	}

	if lv := StringValue(c.LuaVer); lv != "" && !slices.Contains(luaTags, lv) {
		return fmt.Errorf("unknown lua_ver %q, must be one of: %s", lv, strings.Join(luaTags, ", "))
	}

	for _, list := range []struct {
		field string
		names []string
	}{
		{"enable", c.Enable},
		{"disable", c.Disable},
	} {
		for _, name := range list.names {
			if !slices.Contains(dependencies, name) {
				return fmt.Errorf("%s: unknown dependency %q", list.field, name)
			}
		}
	}
	for _, name := range c.Enable {
		if slices.Contains(c.Disable, name) {
			return fmt.Errorf("dependency %q is both enabled and disabled", name)
		}
	}
	return nil
}

// CommandSafeString validates that a command line taken from configuration
// holds nothing but words. It rejects substitutions and shell operators,
// since the value is split into arguments and never run through a shell.
func CommandSafeString(value string, fieldName string) error {
	if value == "" {
		return nil
	}

	if strings.Contains(value, "$(") {
		return fmt.Errorf("%s contains command substitution '$(' pattern: %s", fieldName, value)
	}
	if strings.Contains(value, "`") {
		return fmt.Errorf("%s contains command substitution backtick '`' pattern: %s", fieldName, value)
	}

	operators := []struct {
		char string
		desc string
	}{
		// longer patterns first
		{">>", "append redirection"},
		{"<<", "here document"},
		{"||", "logical OR"},
		{"&&", "logical AND"},
		{";", "semicolon"},
		{"|", "pipe"},
		{"&", "ampersand"},
		{">", "output redirection"},
		{"<", "input redirection"},
	}
	for _, op := range operators {
		if strings.Contains(value, op.char) {
			return fmt.Errorf("%s contains shell operator '%s' (%s): %s", fieldName, op.char, op.desc, value)
		}
	}

	for _, r := range value {
		if unicode.IsControl(r) && r != '\t' {
			return fmt.Errorf("%s contains control character (code %d)", fieldName, r)
		}
	}
	return nil
}
