package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/tauri-release/internal/config"
	"github.com/oshokin/tauri-release/internal/domain/release"
	"github.com/oshokin/tauri-release/internal/domain/semver"
	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/service/artifact"
)

const (
	// Filename is written into the target directory.
	Filename = "latest.json"

	// DefaultNotes is used when no release notes are given.
	DefaultNotes = "Update"

	// pubDateLayout is ISO-8601 in UTC with millisecond precision.
	pubDateLayout = "2006-01-02T15:04:05.000Z07:00"

	fileMode os.FileMode = 0o644
)

var (
	errTargetDirRequired = errors.New("target directory must be provided")
	errVersionRequired   = errors.New("version must be provided")
)

// Options are inputs of the manifest generator.
type Options struct {
	// TargetDir holds the uploaded archive and signature; latest.json is written here.
	TargetDir string
	// Version is accepted with or without the leading v.
	Version string
	// Notes are the release notes; empty means DefaultNotes.
	Notes string
	// PlatformKey names the platform entry; empty means config.DefaultPlatformKey.
	PlatformKey string
	// URLTemplate builds the download URL; empty means config.DefaultDownloadURLTemplate.
	URLTemplate string
	// Now stamps pub_date; nil means time.Now.
	Now func() time.Time
	// Resolver locates the archive; nil means artifact.DefaultResolver.
	Resolver *artifact.Resolver
}

// Run builds the manifest for opts and writes it to the target directory.
// It returns the path of the written file.
func Run(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "manifest")

	m, found, err := Build(opts)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Resolved update archive",
		"family", found.Family.Name, "archive", found.ArchiveName, "dir", found.Dir)

	path, err := Write(opts.TargetDir, m)
	if err != nil {
		return "", err
	}

	for key, platform := range m.Platforms {
		logger.InfoKV(ctx, "Generated update manifest", "path", path, "version", m.Version, "platform", key, "url", platform.URL)
	}

	return path, nil
}

// Build assembles the manifest without touching the disk beyond reading the artifact.
func Build(opts *Options) (*release.Manifest, *release.Artifact, error) {
	if opts == nil || strings.TrimSpace(opts.TargetDir) == "" {
		return nil, nil, errTargetDirRequired
	}

	bare, prefixed := semver.Normalize(opts.Version)
	if bare == "" {
		return nil, nil, errVersionRequired
	}

	if _, err := semver.Parse(bare); err != nil {
		return nil, nil, err
	}

	notes := opts.Notes
	if notes == "" {
		notes = DefaultNotes
	}

	platformKey := opts.PlatformKey
	if platformKey == "" {
		platformKey = config.DefaultPlatformKey
	}

	template := opts.URLTemplate
	if template == "" {
		template = config.DefaultDownloadURLTemplate
	}

	if err := config.ValidateURLTemplate(template); err != nil {
		return nil, nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = artifact.DefaultResolver()
	}

	found, err := resolver.Resolve(opts.TargetDir, bare)
	if err != nil {
		return nil, nil, err
	}

	m := &release.Manifest{
		Version: prefixed,
		Notes:   notes,
		PubDate: now().UTC().Format(pubDateLayout),
		Platforms: map[string]release.Platform{
			platformKey: {
				Signature: found.Signature,
				URL:       DownloadURL(template, bare, found.ArchiveName),
			},
		},
	}

	return m, found, nil
}

// DownloadURL fills template with the bare version and the escaped archive name.
func DownloadURL(template, version, file string) string {
	return strings.NewReplacer(
		config.VersionPlaceholder, url.PathEscape(version),
		config.FilePlaceholder, url.PathEscape(file),
	).Replace(template)
}

// Write stores m as pretty-printed JSON in dir and returns the file path.
func Write(dir string, m *release.Manifest) (string, error) {
	if len(m.Platforms) == 0 {
		return "", fmt.Errorf("manifest without platforms: %w", artifact.ErrNoArtifactFound)
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(m); err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}

	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, buf.Bytes(), fileMode); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return path, nil
}
