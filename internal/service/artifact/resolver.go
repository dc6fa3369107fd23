package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/oshokin/tauri-release/internal/domain/release"
)

// ErrNoArtifactFound is returned when no strategy finds a complete archive and signature pair.
var ErrNoArtifactFound = errors.New("no artifact found")

// Strategy looks for an artifact of version starting from dir. It returns nil, nil
// when it finds nothing and an error only for I/O failures other than absence.
type Strategy func(dir, version string) (*release.Artifact, error)

// DirectoryStrategy finds an archive of family together with its signature directly in dir.
// Signed archives named for version ("_<version>_") win; otherwise, and when
// version is empty, the lexically first signed archive is used.
func DirectoryStrategy(family release.Family) Strategy {
	return func(dir, version string) (*release.Artifact, error) {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}

		files := make(map[string]struct{}, len(entries))
		archives := make([]string, 0, len(entries))

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := entry.Name()
			files[name] = struct{}{}

			if strings.HasSuffix(name, family.ArchiveSuffix) {
				archives = append(archives, name)
			}
		}

		sort.Strings(archives)

		signed := slices.DeleteFunc(archives, func(archive string) bool {
			_, ok := files[archive+release.SignatureSuffix]
			return !ok
		})

		if len(signed) == 0 {
			return nil, nil
		}

		archive := signed[0]

		if version != "" {
			if idx := slices.IndexFunc(signed, func(name string) bool {
				return ArchiveMatchesVersion(name, version)
			}); idx >= 0 {
				archive = signed[idx]
			}
		}

		signature, err := os.ReadFile(filepath.Join(dir, archive+release.SignatureSuffix))
		if err != nil {
			return nil, fmt.Errorf("read signature of %s: %w", archive, err)
		}

		return &release.Artifact{
			Family:      family,
			Dir:         dir,
			ArchiveName: archive,
			Signature:   string(signature),
		}, nil
	}
}

// ArchiveMatchesVersion reports whether a bundler archive name carries version,
// as in "App_2.1.1_x64_en-US.msi.zip".
func ArchiveMatchesVersion(name, version string) bool {
	return strings.Contains(name, "_"+version+"_")
}

// SiblingStrategy searches the to family's directory next to dir, but only
// when dir itself is named after the from family.
func SiblingStrategy(from, to release.Family) Strategy {
	search := DirectoryStrategy(to)

	return func(dir, version string) (*release.Artifact, error) {
		clean := filepath.Clean(dir)
		if filepath.Base(clean) != from.Dir {
			return nil, nil
		}

		return search(filepath.Join(filepath.Dir(clean), to.Dir), version)
	}
}

// Resolver tries strategies in priority order.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a resolver over strategies.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// DefaultResolver prefers MSI in the given directory, then NSIS in its sibling,
// then NSIS in the given directory, which covers a flat release directory.
func DefaultResolver() *Resolver {
	return NewResolver(
		DirectoryStrategy(release.MSI),
		SiblingStrategy(release.MSI, release.NSIS),
		DirectoryStrategy(release.NSIS),
	)
}

// Resolve returns the first artifact found for version or ErrNoArtifactFound.
// The version is bare, without the leading v; empty accepts any archive.
func (r *Resolver) Resolve(dir, version string) (*release.Artifact, error) {
	for _, strategy := range r.strategies {
		found, err := strategy(dir, version)
		if err != nil {
			return nil, err
		}

		if found != nil {
			return found, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", dir, ErrNoArtifactFound)
}
