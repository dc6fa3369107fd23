// Package versionrecord persists the application version.
//
// The version lives twice on disk, in the package manifest and in the bundler
// configuration. A Record treats both documents as one logical value: it reads
// the current version from the package manifest and Save writes every document,
// reporting a partial write as a single SaveError.
package versionrecord
