// Package pipeline orchestrates an interactive release.
//
// A run checks both version documents, asks for a commit message and the new
// version, commits pending work and the version bump, builds signed installers,
// collects them into the release directory, pushes and finally tags the release.
// Steps run strictly in sequence and every external command runs at most once.
package pipeline
