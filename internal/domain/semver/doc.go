// Package semver models the application version bumped by a release.
//
// A Version is a major.minor.patch triple ordered lexicographically. Increment
// applies the bump rules (major resets minor and patch, minor resets patch) and
// Normalize converts between the bare form used in URLs and the v-prefixed tag form.
package semver
