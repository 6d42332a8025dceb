package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	Pin         string
	SessionFile string
	Output      string
	Verbose     bool
}

// Session is the locally remembered game: the id of the last game this
// CLI created or joined, and the edit PIN when one was granted.
type Session struct {
	GameID string `json:"gameId"`
	Pin    string `json:"pin,omitempty"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("RUMMY_SERVER", "http://localhost:8080"),
		Pin:         os.Getenv("RUMMY_PIN"),
		SessionFile: getEnvOrDefault("RUMMY_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadSession reads the remembered session from the session file. A
// missing file means no remembered game, not an error.
func (c *Config) LoadSession() (*Session, error) {
	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// SaveSession writes the session to the session file
func (c *Config) SaveSession(sess Session) error {
	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return os.WriteFile(c.SessionFile, data, 0600)
}

// ClearSession removes the session file
func (c *Config) ClearSession() error {
	err := os.Remove(c.SessionFile)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rummy/session"
	}
	return filepath.Join(home, ".rummy", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
