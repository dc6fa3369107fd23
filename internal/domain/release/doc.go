// Package release contains the data exchanged between pipeline steps:
// installer families and resolved artifacts, the signing credential and the
// update manifest polled by the auto-update client.
package release
