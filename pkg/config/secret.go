package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.minekube.com/veloxy/pkg/internal/randstr"
)

// ErrForwardingSecretMissing is returned when the forwarding mode
// requires a secret but none could be resolved.
var ErrForwardingSecretMissing = errors.New("config: forwarding secret is missing")

// ErrForwardingSecretPathInvalid is returned when the resolved
// forwarding-secret path names a directory.
var ErrForwardingSecretPathInvalid = errors.New("config: forwarding secret path is a directory")

const defaultForwardingSecretFile = "forwarding.secret"

// resolveForwardingSecret implements the resolution order documented
// in spec.md §4.3: environment variable first, then the
// forwarding-secret-file config key, then the default file next to
// the config file. On first run, if neither the config file nor the
// default secret file existed before this load, a random
// 12-character printable secret is generated and written to the
// default file, grounded on VelocityConfiguration.generateRandomString.
func resolveForwardingSecret(secretFile string, configDir string, firstRun bool) ([]byte, error) {
	if env := os.Getenv("VELOCITY_FORWARDING_SECRET"); env != "" {
		return []byte(env), nil
	}

	explicit := secretFile != ""
	path := secretFile
	if !explicit {
		path = filepath.Join(configDir, defaultForwardingSecretFile)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(configDir, path)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrForwardingSecretPathInvalid, path)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read forwarding secret: %w", err)
		}
		return b, nil
	case os.IsNotExist(err):
		if explicit {
			// An explicit forwarding-secret-file was configured but
			// does not exist: this is fatal, not auto-generated.
			return nil, fmt.Errorf("%w: configured file %s does not exist", ErrForwardingSecretMissing, secretFile)
		}
		if !firstRun {
			// The config file already existed before this load but
			// the default secret file does not: do not silently
			// fabricate a secret for an established install.
			return nil, fmt.Errorf("%w: %s", ErrForwardingSecretMissing, path)
		}
		secret := randstr.String(12)
		if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
			return nil, fmt.Errorf("config: write generated forwarding secret: %w", err)
		}
		return []byte(secret), nil
	default:
		return nil, fmt.Errorf("config: stat forwarding secret %s: %w", path, err)
	}
}

// CleanServerName strips '"' characters from a server name, matching
// LegacyConfigurationLoader's server-name sanitization.
func CleanServerName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r != '"' {
			out = append(out, r)
		}
	}
	return string(out)
}
