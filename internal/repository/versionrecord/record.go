package versionrecord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/tauri-release/internal/config"
	"github.com/oshokin/tauri-release/internal/domain/semver"
)

// Repository is the version persistence the pipeline depends on.
type Repository interface {
	Check() error
	CurrentVersion() (semver.Version, error)
	Versions() map[string]string
	Save(v semver.Version) error
}

// Record keeps the version in several documents. The first one is authoritative.
type Record struct {
	docs []Document
}

var errNoDocuments = errors.New("version record has no documents")

// New creates a record over the package manifest and the bundler config.
func New(packageManifest, bundlerConfig Document) *Record {
	return &Record{docs: []Document{packageManifest, bundlerConfig}}
}

// FromConfig builds the record described by the release settings.
func FromConfig(cfg *config.Config) *Record {
	return New(
		Document{Name: "package manifest", Path: cfg.PackageManifest, Pointer: cfg.VersionPointer},
		Document{Name: "bundler config", Path: cfg.BundlerConfig, Pointer: cfg.VersionPointer},
	)
}

// Documents returns the backing documents in write order.
func (r *Record) Documents() []Document {
	return append([]Document(nil), r.docs...)
}

// CurrentVersion reads the version from the package manifest.
func (r *Record) CurrentVersion() (semver.Version, error) {
	if len(r.docs) == 0 {
		return semver.Version{}, errNoDocuments
	}

	return r.docs[0].ReadVersion()
}

// Check verifies every document is readable and carries a version,
// so a release aborts before anything is mutated.
func (r *Record) Check() error {
	if len(r.docs) == 0 {
		return errNoDocuments
	}

	errs := make([]error, 0, len(r.docs))
	for _, doc := range r.docs {
		if _, err := doc.ReadVersion(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Versions returns the version string found in each document, keyed by document name.
// Unreadable documents are reported with an empty string.
func (r *Record) Versions() map[string]string {
	result := make(map[string]string, len(r.docs))

	for _, doc := range r.docs {
		v, err := doc.ReadVersion()
		if err != nil {
			result[doc.Name] = ""
			continue
		}

		result[doc.Name] = v.String()
	}

	return result
}

// Save writes v to every document in order and stops at the first failure.
// Documents written before the failure are not rolled back; the returned
// *SaveError lists them.
func (r *Record) Save(v semver.Version) error {
	if len(r.docs) == 0 {
		return errNoDocuments
	}

	written := make([]string, 0, len(r.docs))

	for i, doc := range r.docs {
		if err := doc.WriteVersion(v); err != nil {
			skipped := make([]string, 0, len(r.docs)-i-1)
			for _, rest := range r.docs[i+1:] {
				skipped = append(skipped, rest.Path)
			}

			return &SaveError{
				Version: v,
				Written: written,
				Failed:  doc.Path,
				Skipped: skipped,
				Err:     err,
			}
		}

		written = append(written, doc.Path)
	}

	return nil
}

// SaveError reports a failed Save. Partial reports whether some documents
// already hold the new version.
type SaveError struct {
	Version semver.Version
	Written []string
	Failed  string
	Skipped []string
	Err     error
}

// Partial reports whether documents now disagree about the version.
func (e *SaveError) Partial() bool {
	return len(e.Written) > 0
}

// Error describes which documents hold which version.
func (e *SaveError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "save version %s: %s failed", e.Version, e.Failed)

	if len(e.Written) > 0 {
		fmt.Fprintf(&b, " after writing %s (documents are now inconsistent)", strings.Join(e.Written, ", "))
	}

	if len(e.Skipped) > 0 {
		fmt.Fprintf(&b, ", not attempted: %s", strings.Join(e.Skipped, ", "))
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

// Unwrap exposes the underlying write error.
func (e *SaveError) Unwrap() error {
	return e.Err
}
