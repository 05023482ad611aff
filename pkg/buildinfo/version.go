// Package buildinfo carries the version stamped into sketchstack binaries.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/harishkotra/SketchStack/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/harishkotra/SketchStack/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/harishkotra/SketchStack/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/sketchstack
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the JSON form served by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
