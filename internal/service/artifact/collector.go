package artifact

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/tauri-release/internal/domain/release"
	"github.com/oshokin/tauri-release/internal/logger"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ReleaseFileMode is applied to collected installers.
	ReleaseFileMode os.FileMode = 0o644

	releaseDirMode os.FileMode = 0o755

	// checksumFunction verifies every copied installer.
	checksumFunction = crypto.SHA512
)

var errHashUnavailable = errors.New("hash function unavailable")

// Source is a bundle directory holding installers of one family.
type Source struct {
	Family release.Family
	Dir    string
}

// Sources returns the family subdirectories of bundleDir in priority order.
func Sources(bundleDir string) []Source {
	families := release.Families()
	sources := make([]Source, 0, len(families))

	for _, family := range families {
		sources = append(sources, Source{Family: family, Dir: filepath.Join(bundleDir, family.Dir)})
	}

	return sources
}

// Collect copies the installers, updater archives and signatures of each existing
// source into destDir, keeping filenames and overwriting collisions. Missing sources are skipped, so zero
// copied files is not an error.
func Collect(ctx context.Context, sources []Source, destDir string) (int, error) {
	if err := os.MkdirAll(destDir, releaseDirMode); err != nil {
		return 0, fmt.Errorf("create release directory: %w", err)
	}

	copied := 0

	for _, source := range sources {
		names, err := releaseFiles(source)
		if err != nil {
			return copied, err
		}

		for _, name := range names {
			target := filepath.Join(destDir, name)
			if err = copyVerified(filepath.Join(source.Dir, name), target); err != nil {
				return copied, fmt.Errorf("copy %s: %w", name, err)
			}

			logger.InfoKV(ctx, "Copied artifact", "family", source.Family.Name, "file", name, "release_dir", destDir)

			copied++
		}
	}

	return copied, nil
}

// releaseFiles lists the regular files of source the family collects, sorted.
func releaseFiles(source Source) ([]string, error) {
	entries, err := os.ReadDir(source.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list %s: %w", source.Dir, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Type().IsRegular() && source.Family.Collects(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}

// copyVerified replaces target with source atomically. The checksum comes from a
// separate read of source, so a short or changed stream fails verification.
func copyVerified(source, target string) error {
	checksum, err := FileChecksum(source)
	if err != nil {
		return err
	}

	file, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	defer func() {
		_ = file.Close()
	}()

	return replaceVerified(file, target, checksum)
}

// replaceVerified writes r over target only when its SHA-512 equals checksum.
// A target that did not exist before is not left behind on failure.
func replaceVerified(r io.Reader, target string, checksum []byte) error {
	created := false

	// go-update swaps files by renaming, so the target has to exist first.
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		placeholder, createErr := os.Create(filepath.Clean(target))
		if createErr != nil {
			return createErr
		}

		if err = placeholder.Close(); err != nil {
			return err
		}

		created = true
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: ReleaseFileMode,
		Checksum:   checksum,
		Hash:       checksumFunction,
	}

	if err := goupdate.Apply(r, options); err != nil {
		if created {
			_ = os.Remove(target)
		}

		return err
	}

	return nil
}

// FileChecksum returns the SHA-512 digest of the file at path.
func FileChecksum(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return checksumOf(data)
}

func checksumOf(data []byte) ([]byte, error) {
	if !checksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := checksumFunction.New()
	if _, err := hasher.Write(data); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
