// Package version reports the version of the chartedit binaries.
package version

import (
	"runtime/debug"
	"strings"
)

// Version can be set at build time:
// go build -ldflags "-X github.com/rhythmkit/chartedit/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision the binary was built from, suffixed with
// -dirty when the working tree had local changes. Empty if unknown.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	settings := map[string]string{}
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	hash := settings["vcs.revision"]
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if hash != "" && settings["vcs.modified"] == "true" {
		hash += "-dirty"
	}
	return hash
}()

// VersionOrHash is what the version command prints.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && !strings.HasPrefix(info.Main.Version, "(") {
		return info.Main.Version
	}
	return "devel"
}()
