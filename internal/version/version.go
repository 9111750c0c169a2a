// Package version exposes build metadata for the CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	-ldflags "-X github.com/minterra/walletlink/internal/version.Version=v1.2.3"
//
//nolint:gochecknoglobals // set via ldflags
var (
	Version = "dev"
	Commit  = ""
)

// String renders the version line printed by --version.
func String() string {
	v := Version
	commit := Commit

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}

	if commit != "" {
		return fmt.Sprintf("%s (%s, %s/%s)", v, commit, runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("%s (%s/%s)", v, runtime.GOOS, runtime.GOARCH)
}
