package release

import (
	"strings"

	"github.com/buildkite/interpolate"
	"github.com/pkg/errors"
)

// Release describes a single downloadable build-tool release.
type Release struct {
	// Name is the release name in "<tool>-<version>" form, e.g. "waf-1.8.1".
	Name string
	// URLTemplate is the download location. It may reference ${NAME},
	// ${TOOL} and ${VERSION}.
	URLTemplate string
	// SHA256 is the expected hex digest of the payload.
	SHA256 string
}

// Pinned is the waf release the bootstrapper installs.
var Pinned = Release{
	Name:        "waf-1.8.1",
	URLTemplate: "http://ftp.waf.io/pub/release/${NAME}",
	SHA256:      "ec658116ba0b96629d91fde0b32321849e866e0819f1e835c4c2c7f7ffe1a21d",
}

// Tool returns the tool component of the release name ("waf").
// It doubles as the on-disk file name.
func (r Release) Tool() string {
	tool, _, _ := strings.Cut(r.Name, "-")
	return tool
}

// Version returns the version component of the release name ("1.8.1").
func (r Release) Version() string {
	_, version, _ := strings.Cut(r.Name, "-")
	return version
}

// URL returns the download URL with template variables substituted.
func (r Release) URL() (string, error) {
	env := interpolate.NewMapEnv(map[string]string{
		"NAME":    r.Name,
		"TOOL":    r.Tool(),
		"VERSION": r.Version(),
	})
	url, err := interpolate.Interpolate(env, r.URLTemplate)
	if err != nil {
		return "", errors.Wrapf(err, "failed to interpolate URL template %q", r.URLTemplate)
	}
	return url, nil
}

// MatchesVersionOutput reports whether the output of "<tool> --version"
// names this release's version. waf prints "waf 1.8.1 (<revision>)".
func (r Release) MatchesVersionOutput(output string) bool {
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return false
	}
	return fields[1] == r.Version()
}
