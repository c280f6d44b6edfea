package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// State remembers connection details between runs so the prompts can offer
// the previous host, port, and username as defaults.
type State struct {
	db *sql.DB
}

// OpenState opens or creates the client state database
func OpenState(path string) (*State, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// One connection is enough for a single interactive client
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	state := &State{db: db}
	if err := state.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return state, nil
}

// Close closes the state database
func (s *State) Close() error {
	return s.db.Close()
}

func (s *State) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS Config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

// GetConfig retrieves a configuration value, "" if unset
func (s *State) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM Config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetConfig stores a configuration value
func (s *State) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO Config (key, value) VALUES (?, ?)
	`, key, value)
	return err
}

// LastHost returns the host of the previous successful connection
func (s *State) LastHost() string {
	host, _ := s.GetConfig("last_host")
	return host
}

// SetLastHost stores the host of a successful connection
func (s *State) SetLastHost(host string) error {
	return s.SetConfig("last_host", host)
}

// LastPort returns the port of the previous successful connection
func (s *State) LastPort() string {
	port, _ := s.GetConfig("last_port")
	return port
}

// SetLastPort stores the port of a successful connection
func (s *State) SetLastPort(port string) error {
	return s.SetConfig("last_port", port)
}

// LastUsername returns the previously used username
func (s *State) LastUsername() string {
	username, _ := s.GetConfig("last_username")
	return username
}

// SetLastUsername stores the username after a successful login
func (s *State) SetLastUsername(username string) error {
	return s.SetConfig("last_username", username)
}
