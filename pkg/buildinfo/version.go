// Package buildinfo identifies the skilltree binary that produced a result.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/skilltree/pkg/buildinfo.Version=$(git describe --tags) \
//	    -X github.com/matzehuels/skilltree/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/skilltree/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/skilltree
//
// Version also scopes cached build results and is recorded on every history
// run, so placements from one release are never served by another.
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// Short returns the version with an abbreviated commit, e.g.
// "v0.3.1 (4f2a9c1)". Unstamped builds return just the version.
func Short() string {
	if Commit == "none" || Commit == "" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, c)
}

// Template returns the cobra version template for skilltree --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
