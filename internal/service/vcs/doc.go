// Package vcs sequences the git operations of a release.
//
// The Controller stages, commits, pushes and tags through a common.Runner.
// Every git command runs at most once; only commits marked tolerant survive a
// non-zero exit, which covers the "nothing to commit" case of the opportunistic
// pre-release commit.
package vcs
