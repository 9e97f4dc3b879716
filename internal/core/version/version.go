// Package version holds the build version, set at link time with
// -ldflags "-X github.com/guiyumin/vsum/internal/core/version.Version=1.2.3".
package version

// Version is the vsum release version without the leading "v".
var Version = "dev"
