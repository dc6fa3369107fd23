package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/tauri-release/internal/domain/release"
	"github.com/oshokin/tauri-release/internal/domain/semver"
	"github.com/oshokin/tauri-release/internal/service/artifact"
)

const signature = "dW50cnVzdGVkIGNvbW1lbnQ6IHNpZ25hdHVyZQ==\n"

func fixedClock() time.Time {
	return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
}

func msiUploadDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "msi")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_1.0.0_x64_en-US.msi.zip"), []byte("zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_1.0.0_x64_en-US.msi.zip.sig"), []byte(signature), 0o644))

	return dir
}

// TestRun_WritesLatestJSON generates the manifest for a directory with one signed MSI archive.
func TestRun_WritesLatestJSON(t *testing.T) {
	t.Parallel()

	dir := msiUploadDir(t)

	path, err := Run(context.Background(), &Options{TargetDir: dir, Version: "1.0.0", Now: fixedClock})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, Filename), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte('\n'), contents[len(contents)-1])

	var got release.Manifest
	require.NoError(t, json.Unmarshal(contents, &got))

	want := release.Manifest{
		Version: "v1.0.0",
		Notes:   "Update",
		PubDate: "2026-10-14T09:30:00.000Z",
		Platforms: map[string]release.Platform{
			"windows-x86_64": {
				Signature: signature,
				URL:       "https://github.com/neko233-com/neko233-hardware-viewer/releases/download/v1.0.0/app_1.0.0_x64_en-US.msi.zip",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}

	require.Contains(t, got.Platforms["windows-x86_64"].URL, "1.0.0")
}

// TestBuild_PrefixedVersion accepts a v-prefixed version and custom notes.
func TestBuild_PrefixedVersion(t *testing.T) {
	t.Parallel()

	m, found, err := Build(&Options{
		TargetDir:   msiUploadDir(t),
		Version:     "v1.0.0",
		Notes:       "Faster GPU detection",
		URLTemplate: "https://raw.githubusercontent.com/acme/app/main/release/{file}?v={version}",
		Now:         fixedClock,
	})
	require.NoError(t, err)
	require.Equal(t, release.MSI, found.Family)
	require.Equal(t, "v1.0.0", m.Version)
	require.Equal(t, "Faster GPU detection", m.Notes)
	require.Equal(t,
		"https://raw.githubusercontent.com/acme/app/main/release/app_1.0.0_x64_en-US.msi.zip?v=1.0.0",
		m.Platforms["windows-x86_64"].URL)
}

// TestBuild_SiblingNSIS falls back to the NSIS directory next to the msi directory.
func TestBuild_SiblingNSIS(t *testing.T) {
	t.Parallel()

	bundle := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "msi"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "nsis"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "nsis", "app_2.0.0_x64-setup.nsis.zip"), []byte("zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "nsis", "app_2.0.0_x64-setup.nsis.zip.sig"), []byte("nsis"), 0o644))

	m, _, err := Build(&Options{TargetDir: filepath.Join(bundle, "msi"), Version: "2.0.0", Now: fixedClock})
	require.NoError(t, err)
	require.Equal(t, "nsis", m.Platforms["windows-x86_64"].Signature)
	require.Contains(t, m.Platforms["windows-x86_64"].URL, "/v2.0.0/app_2.0.0_x64-setup.nsis.zip")
}

// TestRun_NoArtifact fails without writing a manifest.
func TestRun_NoArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Run(context.Background(), &Options{TargetDir: dir, Version: "1.0.0"})
	require.ErrorIs(t, err, artifact.ErrNoArtifactFound)
	require.NoFileExists(t, filepath.Join(dir, Filename))
}

// TestBuild_InvalidInputs rejects missing arguments and bad versions.
func TestBuild_InvalidInputs(t *testing.T) {
	t.Parallel()

	_, _, err := Build(&Options{Version: "1.0.0"})
	require.ErrorIs(t, err, errTargetDirRequired)

	_, _, err = Build(&Options{TargetDir: t.TempDir(), Version: " v "})
	require.ErrorIs(t, err, errVersionRequired)

	_, _, err = Build(&Options{TargetDir: t.TempDir(), Version: "latest"})
	require.ErrorIs(t, err, semver.ErrInvalidVersion)

	_, _, err = Build(&Options{TargetDir: msiUploadDir(t), Version: "1.0.0", URLTemplate: "https://example.com/app"})
	require.Error(t, err)
}

// TestWrite_RequiresPlatform refuses to write an empty manifest.
func TestWrite_RequiresPlatform(t *testing.T) {
	t.Parallel()

	_, err := Write(t.TempDir(), &release.Manifest{Version: "v1.0.0"})
	require.ErrorIs(t, err, artifact.ErrNoArtifactFound)
}

// TestDownloadURL escapes filenames with spaces.
func TestDownloadURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"https://example.com/v1.2.3/Hardware%20Viewer_1.2.3_x64_en-US.msi.zip",
		DownloadURL("https://example.com/v{version}/{file}", "1.2.3", "Hardware Viewer_1.2.3_x64_en-US.msi.zip"))
}

// TestBuild_PicksArchiveOfRequestedVersion ignores the signed archive of an earlier build.
func TestBuild_PicksArchiveOfRequestedVersion(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "msi")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for version, sig := range map[string]string{"2.1.0": "sig-2.1.0\n", "2.1.1": "sig-2.1.1\n"} {
		archive := filepath.Join(dir, "app_"+version+"_x64_en-US.msi.zip")
		require.NoError(t, os.WriteFile(archive, []byte("zip "+version), 0o644))
		require.NoError(t, os.WriteFile(archive+release.SignatureSuffix, []byte(sig), 0o644))
	}

	m, found, err := Build(&Options{TargetDir: dir, Version: "v2.1.1", Now: fixedClock})
	require.NoError(t, err)
	require.Equal(t, "app_2.1.1_x64_en-US.msi.zip", found.ArchiveName)

	platform := m.Platforms["windows-x86_64"]
	require.Equal(t, "sig-2.1.1\n", platform.Signature)
	require.Equal(t,
		"https://github.com/neko233-com/neko233-hardware-viewer/releases/download/v2.1.1/app_2.1.1_x64_en-US.msi.zip",
		platform.URL)
}
