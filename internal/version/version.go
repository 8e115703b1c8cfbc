/*
Package version provides build information for city-hub.

Version values are set via ldflags during build:

	go build -ldflags "-X github.com/khanglvm/city-hub/internal/version.Version=v0.3.0 \
	  -X github.com/khanglvm/city-hub/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/city-hub/internal/version.Date=$(date -u +%Y-%m-%d)"

If not set, the build reports itself as "dev".
*/
package version

import "runtime"

// Version information (set via ldflags during build)
var (
	// Version is the release tag, e.g. v0.3.0
	Version = "dev"
	// Commit is the short git commit hash
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// Info is the machine-readable build description.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String formats the build for humans.
func (i Info) String() string {
	if i.Version == "dev" {
		return i.Version + " (development build, " + i.GoVersion + ")"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ", " + i.Platform + ")"
}

// GetVersion returns the formatted build string.
func GetVersion() string {
	return Get().String()
}
