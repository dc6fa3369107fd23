// Package common holds helpers shared by several services.
//
// It provides the Command Runner used to invoke git and the bundler with the
// console inherited, and a run lock that keeps two releases from mutating the
// working tree at the same time.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
