package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/tauri-release/internal/domain/release"
	"github.com/oshokin/tauri-release/internal/logger"
)

// ErrCredentialLoad is returned when a key file exists but cannot be read.
// It is a warning condition; callers continue without a credential.
var ErrCredentialLoad = errors.New("signing credential unreadable")

// Load reads the signing key at keyPath and the optional passphrase at passwordPath.
//
// A missing key file returns found=false and a nil error. A key file that exists
// but cannot be read returns found=false and ErrCredentialLoad. A passphrase file
// that cannot be read leaves the passphrase empty and is reported as ErrCredentialLoad
// alongside the loaded credential.
func Load(ctx context.Context, keyPath, passwordPath string) (*release.Credential, bool, error) {
	key, exists, err := readTrimmed(keyPath)
	if !exists {
		logger.WarnKV(ctx, "Signing key not found, artifacts will not be signed", "path", keyPath)
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCredentialLoad, keyPath, err)
	}

	if key == "" {
		logger.WarnKV(ctx, "Signing key file is empty", "path", keyPath)
		return nil, false, nil
	}

	var password string

	if passwordPath != "" {
		var passwordExists bool

		password, passwordExists, err = readTrimmed(passwordPath)
		switch {
		case !passwordExists:
			logger.WarnKV(ctx, "Signing key passphrase file not found, using empty passphrase", "path", passwordPath)
		case err != nil:
			credential := release.NewCredential(key, "")
			return credential, true, fmt.Errorf("%w: %s: %w", ErrCredentialLoad, passwordPath, err)
		}
	}

	logger.InfoKV(ctx, "Signing key loaded", "path", keyPath, "has_password", password != "")

	return release.NewCredential(key, password), true, nil
}

// readTrimmed returns the trimmed content of path and whether path exists.
func readTrimmed(path string) (string, bool, error) {
	if path == "" {
		return "", false, nil
	}

	path = filepath.Clean(path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return "", true, err
	}

	return strings.TrimSpace(string(contents)), true, nil
}
