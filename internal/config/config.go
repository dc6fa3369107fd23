package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PushStage selects when the release branch is pushed.
type PushStage string

const (
	// PushAfterCollect pushes once artifacts were built and collected.
	PushAfterCollect PushStage = "after-collect"
	// PushBeforeBuild pushes right after the version bump commit.
	PushBeforeBuild PushStage = "before-build"
)

// Config holds the release pipeline settings.
type Config struct {
	// PackageManifest is the package.json holding the version.
	PackageManifest string `yaml:"package_manifest"`
	// BundlerConfig is the tauri.conf.json holding a second copy of the version.
	BundlerConfig string `yaml:"bundler_config"`
	// VersionPointer is the JSON pointer of the version field in both documents.
	VersionPointer string `yaml:"version_pointer"`
	// SigningKeyPath points at the updater private key.
	SigningKeyPath string `yaml:"signing_key_path"`
	// SigningPasswordPath optionally points at the key passphrase.
	SigningPasswordPath string `yaml:"signing_password_path,omitempty"`
	// BuildCommand is run through the shell word splitter, not a shell.
	BuildCommand string `yaml:"build_command"`
	// BundleDir is the bundler output directory containing msi/ and nsis/.
	BundleDir string `yaml:"bundle_dir"`
	// ReleaseDir receives the collected installers.
	ReleaseDir string `yaml:"release_dir"`
	// DefaultCommitMessage is offered by the commit message prompt.
	DefaultCommitMessage string `yaml:"default_commit_message"`
	// PushStage selects when the branch is pushed.
	PushStage PushStage `yaml:"push_stage"`
	// GitRemote is the remote to push to; empty uses the branch upstream.
	GitRemote string `yaml:"git_remote,omitempty"`
	// PlatformKey is the manifest platform entry, e.g. windows-x86_64.
	PlatformKey string `yaml:"platform_key"`
	// DownloadURLTemplate builds artifact URLs from {version} and {file}.
	DownloadURLTemplate string `yaml:"download_url_template"`
}

const (
	// DefaultConfigFilename is looked up in the working directory.
	DefaultConfigFilename = "tauri-release.yaml"

	// DefaultFilePermissions is used for the settings file.
	DefaultFilePermissions = 0o600

	// DefaultPackageManifest is the npm package manifest.
	DefaultPackageManifest = "package.json"
	// DefaultBundlerConfig is the Tauri configuration.
	DefaultBundlerConfig = "src-tauri/tauri.conf.json"
	// DefaultVersionPointer addresses a top-level "version" member.
	DefaultVersionPointer = "/version"
	// DefaultSigningKeyPath is relative to the project root.
	DefaultSigningKeyPath = ".tauri/signing.key"
	// DefaultBuildCommand builds the Windows bundles.
	DefaultBuildCommand = "npm run build:win"
	// DefaultBundleDir is the bundler output for the MSVC target.
	DefaultBundleDir = "src-tauri/target/x86_64-pc-windows-msvc/release/bundle"
	// DefaultReleaseDir is the flat collection directory.
	DefaultReleaseDir = "release"
	// DefaultCommitMessage is used when the prompt is left empty.
	DefaultCommitMessage = "Release update"
	// DefaultPlatformKey is the only platform currently published.
	DefaultPlatformKey = "windows-x86_64"
	// DefaultDownloadURLTemplate points at GitHub release assets.
	DefaultDownloadURLTemplate = "https://github.com/neko233-com/neko233-hardware-viewer/releases/download/v{version}/{file}"

	// VersionPlaceholder is replaced with the bare version in URL templates.
	VersionPlaceholder = "{version}"
	// FilePlaceholder is replaced with the archive filename in URL templates.
	FilePlaceholder = "{file}"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownPushStage is returned for push stages other than the two supported.
	errUnknownPushStage = errors.New("unknown push stage")
	// errTemplateWithoutFile is returned when the URL template cannot name the artifact.
	errTemplateWithoutFile = errors.New("download url template must contain " + FilePlaceholder)
	// errBadPointer is returned when the version pointer is not a JSON pointer.
	errBadPointer = errors.New("version pointer must start with /")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg) //nolint:errcheck // Defaults always validate.

	return cfg
}

// Load reads configuration from path. A missing file yields defaults;
// a file that exists but cannot be parsed or validated is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	setDefault(&cfg.PackageManifest, DefaultPackageManifest)
	setDefault(&cfg.BundlerConfig, DefaultBundlerConfig)
	setDefault(&cfg.VersionPointer, DefaultVersionPointer)
	setDefault(&cfg.SigningKeyPath, DefaultSigningKeyPath)
	setDefault(&cfg.BuildCommand, DefaultBuildCommand)
	setDefault(&cfg.BundleDir, DefaultBundleDir)
	setDefault(&cfg.ReleaseDir, DefaultReleaseDir)
	setDefault(&cfg.DefaultCommitMessage, DefaultCommitMessage)
	setDefault(&cfg.PlatformKey, DefaultPlatformKey)
	setDefault(&cfg.DownloadURLTemplate, DefaultDownloadURLTemplate)

	if cfg.PushStage == "" {
		cfg.PushStage = PushAfterCollect
	}

	switch cfg.PushStage {
	case PushAfterCollect, PushBeforeBuild:
	default:
		return fmt.Errorf("%q: %w", cfg.PushStage, errUnknownPushStage)
	}

	if !strings.HasPrefix(cfg.VersionPointer, "/") {
		return fmt.Errorf("%q: %w", cfg.VersionPointer, errBadPointer)
	}

	return ValidateURLTemplate(cfg.DownloadURLTemplate)
}

// ValidateURLTemplate checks that template names the file and yields an absolute URL.
func ValidateURLTemplate(template string) error {
	if !strings.Contains(template, FilePlaceholder) {
		return errTemplateWithoutFile
	}

	sample := strings.NewReplacer(VersionPlaceholder, "0.0.0", FilePlaceholder, "file").Replace(template)
	if _, err := url.ParseRequestURI(sample); err != nil {
		return fmt.Errorf("invalid download url template: %w", err)
	}

	return nil
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
