// Package version exposes build metadata injected at link time.
package version

// Populated via -ldflags, e.g.
//
//	go build -ldflags "-X .../internal/version.version=v1.2.3 \
//	  -X .../internal/version.gitCommit=$(git rev-parse --short HEAD) \
//	  -X .../internal/version.buildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
}

// Get returns the build metadata for the running binary.
func Get() Info {
	return Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
	}
}
