// Package config defines the release settings file and helpers to load,
// validate and save it in YAML format.
//
// Every field has a default matching a stock Tauri project building Windows
// installers, so the file is optional.
package config
