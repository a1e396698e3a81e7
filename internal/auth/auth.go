// Package auth resolves and checks the Gemini API key used by the CLI.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".portrait-retouch"
	credentialFile = "credentials.gpg"

	// PassphraseFileEnv names an owner-only file holding the GPG passphrase
	// for non-interactive decryption.
	PassphraseFileEnv = "PORTRAIT_GPG_PASSPHRASE_FILE"
)

// ErrNoAPIKey is returned when no key source is available.
var ErrNoAPIKey = errors.New("API key not found: set GEMINI_API_KEY or store it GPG-encrypted at ~/" + credentialDir + "/" + credentialFile)

// GetAPIKey retrieves the Gemini API key.
// Priority order:
//  1. GEMINI_API_KEY environment variable (also filled from .env files)
//  2. GPG-encrypted file at ~/.portrait-retouch/credentials.gpg
func GetAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Msg("No GPG credentials available")
	return "", ErrNoAPIKey
}

// getFromGPG decrypts the API key from the GPG-encrypted credentials file.
func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")
	args := []string{"--decrypt", "--quiet"}
	if p := passphraseFile(); p != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", p)
	}
	args = append(args, credPath)

	output, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// passphraseFile returns the configured passphrase file if it exists and is
// readable by the owner only.
func passphraseFile() string {
	path := os.Getenv(PassphraseFileEnv)
	if path == "" {
		return ""
	}
	fi, err := os.Stat(path)
	if err != nil {
		log.Warn().Err(err).Str("passphrase_file", path).Msg("Passphrase file not readable; skipping")
		return ""
	}
	if mode := fi.Mode().Perm(); mode&0077 != 0 {
		log.Warn().
			Str("passphrase_file", path).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Passphrase file has insecure permissions (should be 0600); skipping")
		return ""
	}
	return path
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}
