package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	apiKeyFileName = "openfda_api_key"
	keyringService = "dilictl"
	keyringUser    = "openfda_api_key"
)

var (
	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store the openFDA API key used for per-drug lookups",
		Action:          cmdSaveAPIKey,
	}
)

func cmdSaveAPIKey(c *cli.Context) error {
	fmt.Print("Paste your openFDA API key and hit enter:\n>")

	var key string
	if _, err := fmt.Scanln(&key); err != nil {
		return fmt.Errorf("reading user input: %w", err)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if err := saveAPIKey(key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	fmt.Println("API key saved to OS keychain")
	return nil
}

func saveAPIKey(key string) error {
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveAPIKeyFile(key)
	}

	// Clean up legacy file if it exists
	legacyPath := path.Join(getHomeDir(), apiKeyFileName)
	os.Remove(legacyPath)

	return nil
}

// getAPIKey returns the stored openFDA API key, or empty when none was
// saved. The key is optional, lookups just get throttled without it.
func getAPIKey() string {
	key, err := keyring.Get(keyringService, keyringUser)
	if err == nil && key != "" {
		return key
	}

	key, err = getAPIKeyFile()
	if err != nil {
		return ""
	}

	// Migrate to keychain
	if migrateErr := keyring.Set(keyringService, keyringUser, key); migrateErr == nil {
		slog.Info("migrated API key from file to OS keychain")
		legacyPath := path.Join(getHomeDir(), apiKeyFileName)
		os.Remove(legacyPath)
	}

	return key
}

func saveAPIKeyFile(key string) error {
	keyPath := path.Join(getHomeDir(), apiKeyFileName)
	return os.WriteFile(keyPath, []byte(key), 0600)
}

func getAPIKeyFile() (string, error) {
	keyPath := path.Join(getHomeDir(), apiKeyFileName)
	b, err := os.ReadFile(keyPath)
	if err != nil {
		return "", fmt.Errorf("reading API key file %s: %w", keyPath, err)
	}
	return strings.TrimSpace(string(b)), nil
}
