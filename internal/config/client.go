package config

import (
	"os"
	"path/filepath"
)

// ClientConfig configures the terminal client
type ClientConfig struct {
	ServerURL string
	Token     string // Supabase access token; empty means signed out
	DataDir   string
	// UnlockAfterTurns unlocks report generation after this many completed
	// user turns even if the model never signals it. 0 disables the fallback.
	UnlockAfterTurns int
}

// LoadClient reads client settings from the environment
func LoadClient() *ClientConfig {
	return &ClientConfig{
		ServerURL:        getEnv("MIRROR_SERVER_URL", "http://localhost:8080"),
		Token:            getEnv("MIRROR_TOKEN", ""),
		DataDir:          getEnv("MIRROR_DATA_DIR", defaultDataDir()),
		UnlockAfterTurns: getInt("MIRROR_UNLOCK_AFTER_TURNS", 0),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deepmirror"
	}
	return filepath.Join(home, ".deepmirror")
}
