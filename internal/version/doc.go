// Package version exposes build metadata of the release tools.
//
// Version, Commit and BuildTime are injected with -ldflags at build time. It is
// unrelated to the application version the pipeline bumps, see package semver.
package version
