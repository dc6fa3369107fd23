package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate_AppliesDefaults checks that an empty config is completed with defaults.
func TestValidate_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultPackageManifest, cfg.PackageManifest)
	require.Equal(t, DefaultBundlerConfig, cfg.BundlerConfig)
	require.Equal(t, DefaultVersionPointer, cfg.VersionPointer)
	require.Equal(t, DefaultCommitMessage, cfg.DefaultCommitMessage)
	require.Equal(t, PushAfterCollect, cfg.PushStage)
	require.Equal(t, DefaultPlatformKey, cfg.PlatformKey)
	require.Empty(t, cfg.GitRemote)

	require.Error(t, Validate(nil))
}

// TestValidate_Rejects covers invalid push stages, pointers and URL templates.
func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(&Config{PushStage: "sometime"}), errUnknownPushStage)
	require.ErrorIs(t, Validate(&Config{VersionPointer: "version"}), errBadPointer)
	require.ErrorIs(t, Validate(&Config{DownloadURLTemplate: "https://example.com/{version}"}), errTemplateWithoutFile)
	require.Error(t, Validate(&Config{DownloadURLTemplate: "not a url {file}"}))
	require.NoError(t, Validate(&Config{
		PushStage:           PushBeforeBuild,
		DownloadURLTemplate: "https://raw.example.com/app/main/release/{file}",
	}))
}

// TestLoad_MissingFileYieldsDefaults ensures the settings file is optional.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestLoad_Malformed reports unparseable settings.
func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("push_stage: [oops"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	cfg := &Config{
		BuildCommand: "npm run tauri build -- --target x86_64-pc-windows-msvc",
		GitRemote:    "upstream",
		PushStage:    PushBeforeBuild,
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
}
