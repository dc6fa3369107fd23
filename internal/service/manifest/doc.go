// Package manifest generates latest.json, the document the auto-update client
// polls for the newest version.
//
// The generator resolves the signed updater archive in the upload directory,
// embeds its detached signature verbatim and points the single platform entry
// at a download URL built from the configured template.
package manifest
