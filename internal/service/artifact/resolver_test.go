package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tauri-release/internal/domain/release"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))

	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

// TestResolve_PrimaryInDirectory finds the MSI pair and reads the signature verbatim.
func TestResolve_PrimaryInDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "msi")
	writeFiles(t, dir, map[string]string{
		"app_1.0.0_x64_en-US.msi.zip":     "zip",
		"app_1.0.0_x64_en-US.msi.zip.sig": "untrusted comment: sig\nRWQ=\n",
		"app_1.0.0_x64_en-US.msi":         "msi",
	})

	found, err := DefaultResolver().Resolve(dir, "")
	require.NoError(t, err)
	require.Equal(t, release.MSI, found.Family)
	require.Equal(t, "app_1.0.0_x64_en-US.msi.zip", found.ArchiveName)
	require.Equal(t, "untrusted comment: sig\nRWQ=\n", found.Signature)
	require.Equal(t, dir, found.Dir)
}

// TestResolve_PrefersPrimary keeps MSI when both families are complete.
func TestResolve_PrefersPrimary(t *testing.T) {
	t.Parallel()

	bundle := t.TempDir()
	writeFiles(t, filepath.Join(bundle, "msi"), map[string]string{"a.msi.zip": "1", "a.msi.zip.sig": "msi-sig"})
	writeFiles(t, filepath.Join(bundle, "nsis"), map[string]string{"a.nsis.zip": "2", "a.nsis.zip.sig": "nsis-sig"})

	found, err := DefaultResolver().Resolve(filepath.Join(bundle, "msi"), "")
	require.NoError(t, err)
	require.Equal(t, release.MSI, found.Family)
	require.Equal(t, "msi-sig", found.Signature)
}

// TestResolve_FallsBackToSibling uses NSIS when the MSI pair is incomplete.
func TestResolve_FallsBackToSibling(t *testing.T) {
	t.Parallel()

	bundle := t.TempDir()
	writeFiles(t, filepath.Join(bundle, "msi"), map[string]string{"a.msi.zip": "unsigned"})
	writeFiles(t, filepath.Join(bundle, "nsis"), map[string]string{"a_setup.nsis.zip": "2", "a_setup.nsis.zip.sig": "nsis-sig"})

	found, err := DefaultResolver().Resolve(filepath.Join(bundle, "msi") + string(filepath.Separator), "")
	require.NoError(t, err)
	require.Equal(t, release.NSIS, found.Family)
	require.Equal(t, "a_setup.nsis.zip", found.ArchiveName)
	require.Equal(t, filepath.Join(bundle, "nsis"), found.Dir)
}

// TestResolve_NoFallbackOutsidePrimaryDir ignores siblings when the directory is not named msi.
func TestResolve_NoFallbackOutsidePrimaryDir(t *testing.T) {
	t.Parallel()

	bundle := t.TempDir()
	writeFiles(t, filepath.Join(bundle, "uploads"), map[string]string{"a.msi.zip.sig": "orphan"})
	writeFiles(t, filepath.Join(bundle, "nsis"), map[string]string{"a.nsis.zip": "2", "a.nsis.zip.sig": "nsis-sig"})

	_, err := DefaultResolver().Resolve(filepath.Join(bundle, "uploads"), "")
	require.ErrorIs(t, err, ErrNoArtifactFound)
}

// TestResolve_NothingComplete fails when neither family has a pair.
func TestResolve_NothingComplete(t *testing.T) {
	t.Parallel()

	bundle := t.TempDir()
	writeFiles(t, filepath.Join(bundle, "msi"), map[string]string{"a.msi.zip": "1"})
	writeFiles(t, filepath.Join(bundle, "nsis"), map[string]string{"a.nsis.zip.sig": "sig"})

	_, err := DefaultResolver().Resolve(filepath.Join(bundle, "msi"), "")
	require.ErrorIs(t, err, ErrNoArtifactFound)

	_, err = DefaultResolver().Resolve(filepath.Join(bundle, "absent", "msi"), "")
	require.ErrorIs(t, err, ErrNoArtifactFound)
}

// TestResolve_PairsByName requires the signature that belongs to the archive.
func TestResolve_PairsByName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "msi")
	writeFiles(t, dir, map[string]string{
		"a_1.0.0.msi.zip":     "old",
		"b_1.0.1.msi.zip":     "new",
		"b_1.0.1.msi.zip.sig": "b-sig",
	})

	found, err := DefaultResolver().Resolve(dir, "")
	require.NoError(t, err)
	require.Equal(t, "b_1.0.1.msi.zip", found.ArchiveName)
}

// TestResolver_CustomStrategies tries strategies in the given order.
func TestResolver_CustomStrategies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.msi.zip": "1", "a.msi.zip.sig": "msi",
		"a.nsis.zip": "2", "a.nsis.zip.sig": "nsis",
	})

	found, err := NewResolver(DirectoryStrategy(release.NSIS), DirectoryStrategy(release.MSI)).Resolve(dir, "")
	require.NoError(t, err)
	require.Equal(t, release.NSIS, found.Family)
}

// TestResolve_PrefersRequestedVersion skips archives left over from earlier builds.
func TestResolve_PrefersRequestedVersion(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "msi")
	writeFiles(t, dir, map[string]string{
		"app_2.1.0_x64_en-US.msi.zip":      "old",
		"app_2.1.0_x64_en-US.msi.zip.sig":  "sig-2.1.0",
		"app_2.1.1_x64_en-US.msi.zip":      "new",
		"app_2.1.1_x64_en-US.msi.zip.sig":  "sig-2.1.1",
		"app_2.1.10_x64_en-US.msi.zip":     "newer",
		"app_2.1.10_x64_en-US.msi.zip.sig": "sig-2.1.10",
	})

	found, err := DefaultResolver().Resolve(dir, "2.1.1")
	require.NoError(t, err)
	require.Equal(t, "app_2.1.1_x64_en-US.msi.zip", found.ArchiveName)
	require.Equal(t, "sig-2.1.1", found.Signature)

	// Without a matching name the lexical order still decides.
	found, err = DefaultResolver().Resolve(dir, "3.0.0")
	require.NoError(t, err)
	require.Equal(t, "app_2.1.0_x64_en-US.msi.zip", found.ArchiveName)
}

// TestResolve_VersionInSibling applies the version to the NSIS fallback too.
func TestResolve_VersionInSibling(t *testing.T) {
	t.Parallel()

	bundle := t.TempDir()
	writeFiles(t, filepath.Join(bundle, "msi"), map[string]string{})
	writeFiles(t, filepath.Join(bundle, "nsis"), map[string]string{
		"app_1.0.0_x64-setup.nsis.zip":     "old",
		"app_1.0.0_x64-setup.nsis.zip.sig": "sig-1.0.0",
		"app_1.1.0_x64-setup.nsis.zip":     "new",
		"app_1.1.0_x64-setup.nsis.zip.sig": "sig-1.1.0",
	})

	found, err := DefaultResolver().Resolve(filepath.Join(bundle, "msi"), "1.1.0")
	require.NoError(t, err)
	require.Equal(t, release.NSIS, found.Family)
	require.Equal(t, "sig-1.1.0", found.Signature)
}

// TestResolve_FlatReleaseDirectory finds NSIS archives collected next to each other.
func TestResolve_FlatReleaseDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "release")
	writeFiles(t, dir, map[string]string{
		"app_1.0.0_x64-setup.exe":          "exe",
		"app_1.0.0_x64-setup.nsis.zip":     "zip",
		"app_1.0.0_x64-setup.nsis.zip.sig": "nsis-sig",
	})

	found, err := DefaultResolver().Resolve(dir, "1.0.0")
	require.NoError(t, err)
	require.Equal(t, release.NSIS, found.Family)
	require.Equal(t, dir, found.Dir)
}
