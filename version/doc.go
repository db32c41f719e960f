// Package version reports the build of the scribe binary.
//
// Version and GitCommit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/scribe/version.Version=1.2.0" ./cmd/scribe
//
// Unset values fall back to the module build info.
package version
