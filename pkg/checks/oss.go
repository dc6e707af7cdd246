package checks

import (
	"bytes"
	"context"
	"os"
	"strings"
	"unicode"

	"github.com/apex/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultOSSConf is where the 4Front OSS installer writes its settings.
const DefaultOSSConf = "/etc/oss.conf"

const ossLibDirScript = `. "$OSS_CONF" && echo "$OSSLIBDIR"`

// OSSLibDir sources confPath in a POSIX shell and returns the value of
// OSSLIBDIR. A missing file, a failing script or an unset variable all yield "".
func OSSLibDir(ctx context.Context, confPath string) string {
	if confPath == "" {
		confPath = DefaultOSSConf
	}
	logger := log.WithField("file", confPath)

	file, err := syntax.NewParser().Parse(strings.NewReader(ossLibDirScript), "")
	if err != nil {
		logger.WithError(err).Warn("failed to parse OSS lookup script")
		return ""
	}

	env := append(os.Environ(), "OSS_CONF="+confPath)
	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, &stdout, &stderr),
	)
	if err != nil {
		logger.WithError(err).Warn("failed to initialize shell")
		return ""
	}

	if err := runner.Run(ctx, file); err != nil {
		logger.WithError(err).Debugf("sourcing failed: %s", strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRightFunc(stdout.String(), unicode.IsSpace)
}
