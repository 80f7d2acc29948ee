package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

type Config struct {
	Server  ServerConfig
	HubSpot HubSpotConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type HubSpotConfig struct {
	BaseURL    string
	APIToken   string
	ObjectType string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		HubSpot: HubSpotConfig{
			BaseURL:    "https://api.hubapi.com",
			ObjectType: "deals",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.crmscope.app) and
// secrets fall back to macOS Keychain. On Linux the backend is a JSON file
// at $XDG_CONFIG_HOME/crmscope/config.json and secrets live in a JSON file
// under $XDG_DATA_HOME.
//
// Environment variables (CRMSCOPE_*) override backend values on all
// platforms. A missing HubSpot API token is the one hard failure: nothing
// in this tool works without upstream access.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the API token if still empty.
	if cfg.HubSpot.APIToken == "" {
		if tok, err := kc.Get("crmscope", "hubspot_api_token"); err == nil && tok != "" {
			cfg.HubSpot.APIToken = tok
		}
	}

	if cfg.HubSpot.APIToken == "" {
		msg := "missing required config: HubSpot API token. " +
			"Set it via environment variable CRMSCOPE_HUBSPOT_TOKEN" +
			apiKeyHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetServerToken returns the bearer token guarding the local management
// endpoints, generating and persisting one on first use.
func GetServerToken() (string, error) {
	if tok, err := keychainGet("crmscope", "server_token"); err == nil {
		if t := strings.TrimSpace(string(tok)); t != "" {
			return t, nil
		}
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating server token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := keychainSet("crmscope", "server_token", token); err != nil {
		return "", fmt.Errorf("storing server token: %w", err)
	}
	return token, nil
}
