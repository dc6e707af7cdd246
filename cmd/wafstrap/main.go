package main

import (
	"context"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/binary-install/wafstrap/cmd"
	"github.com/binary-install/wafstrap/pkg/httpclient"
	"github.com/charmbracelet/fang"
)

// set by the release build
var (
	version = ""
	commit  = ""
)

func main() {
	if version == "" {
		version, commit = buildInfo()
	}
	httpclient.UserAgent = "wafstrap/" + version

	if err := fang.Execute(
		context.Background(),
		cmd.RootCmd,
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithNotifySignal(syscall.SIGINT, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// buildInfo falls back to module and VCS data for `go install` builds.
func buildInfo() (string, string) {
	v, c := "dev", "none"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			c = s.Value
		}
	}
	return v, c
}
