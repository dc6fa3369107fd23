// Package credential loads the updater signing key for one release.
//
// Loading never aborts a release: a missing key only means the bundler will
// produce unsigned artifacts (or fail on its own if signing is mandatory).
package credential
