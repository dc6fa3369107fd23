package versionrecord

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"github.com/oshokin/tauri-release/internal/domain/semver"
)

const indent = "  "

var (
	// ErrConfigRead is returned when a document is missing, malformed or lacks a version.
	ErrConfigRead = errors.New("config document unreadable")
	// ErrConfigWrite is returned when a document cannot be updated.
	ErrConfigWrite = errors.New("config document not written")
)

// Document is one JSON file holding a copy of the version.
type Document struct {
	// Name labels the document in logs and errors.
	Name string
	// Path is the file location.
	Path string
	// Pointer is the RFC 6901 pointer of the version string.
	Pointer string
}

// ReadVersion returns the version stored in the document.
func (d Document) ReadVersion() (semver.Version, error) {
	tree, err := d.load()
	if err != nil {
		return semver.Version{}, err
	}

	found := tree.Find(d.Pointer)
	if found == nil {
		return semver.Version{}, fmt.Errorf("%s: no %s field: %w", d.Path, d.Pointer, ErrConfigRead)
	}

	var raw string
	if err = json.Unmarshal(found.Pack(), &raw); err != nil {
		return semver.Version{}, fmt.Errorf("%s: %s is not a string: %w", d.Path, d.Pointer, ErrConfigRead)
	}

	v, err := semver.Parse(raw)
	if err != nil {
		return semver.Version{}, fmt.Errorf("%s: %w: %w", d.Path, ErrConfigRead, err)
	}

	return v, nil
}

// WriteVersion replaces the version, keeping every other member and its order.
// The file is rewritten with two-space indentation and a trailing newline.
func (d Document) WriteVersion(v semver.Version) error {
	tree, err := d.load()
	if err != nil {
		return err
	}

	op := "add"
	if tree.Find(d.Pointer) != nil {
		op = "replace"
	}

	patch, err := json.Marshal([]map[string]string{{
		"op":    op,
		"path":  d.Pointer,
		"value": v.String(),
	}})
	if err != nil {
		return fmt.Errorf("%s: encode patch: %w", d.Path, err)
	}

	if err = tree.Patch(patch); err != nil {
		return fmt.Errorf("%s: patch %s: %w: %w", d.Path, d.Pointer, ErrConfigWrite, err)
	}

	var out bytes.Buffer
	if err = json.Indent(&out, bytes.TrimSpace(tree.Pack()), "", indent); err != nil {
		return fmt.Errorf("%s: format: %w: %w", d.Path, ErrConfigWrite, err)
	}

	out.WriteByte('\n')

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(d.Path); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err = os.WriteFile(filepath.Clean(d.Path), out.Bytes(), mode); err != nil {
		return fmt.Errorf("%s: %w: %w", d.Path, ErrConfigWrite, err)
	}

	return nil
}

// load parses the document into a standard JSON tree.
func (d Document) load() (hujson.Value, error) {
	contents, err := os.ReadFile(filepath.Clean(d.Path))
	if err != nil {
		return hujson.Value{}, fmt.Errorf("%s: %w: %w", d.Name, ErrConfigRead, err)
	}

	tree, err := hujson.Parse(contents)
	if err != nil {
		return hujson.Value{}, fmt.Errorf("%s: %w: %w", d.Path, ErrConfigRead, err)
	}

	tree.Standardize()

	if _, isObject := tree.Value.(*hujson.Object); !isObject {
		return hujson.Value{}, fmt.Errorf("%s: top level is not an object: %w", d.Path, ErrConfigRead)
	}

	return tree, nil
}
