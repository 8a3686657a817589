package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/ticketd/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Server Server
	Auth   Auth

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o600); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Server defines configuration options specific to the HTTP server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout sql.Null[time.Duration] `json:"read_header_timeout"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout sql.Null[time.Duration] `json:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout sql.Null[time.Duration] `json:"write_timeout"`
	// RequestIDFormat is the format of the correlation ID assigned to each
	// request. Valid values: uuid, cuid2.
	RequestIDFormat sql.Null[string] `json:"request_id_format"`
	// StaticDir is the directory of static files served for paths that don't
	// match any route. Static files aren't served if it's unset.
	StaticDir sql.Null[string] `json:"static_dir"`
}

// Auth defines configuration options for authentication.
type Auth struct {
	// CookieName is the name of the cookie that carries the auth token.
	CookieName sql.Null[string] `json:"cookie_name"`
	// TokenLifetime is the amount of time auth tokens issued on login are valid for.
	// It serializes from/to xtime.Duration string values.
	TokenLifetime sql.Null[time.Duration] `json:"token_lifetime"`
	// Users are the accounts allowed to log in.
	Users []User `json:"users"`
}

// User is an account allowed to log in.
type User struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"password_hash"`
}

// FindUser returns the user with the given name.
func (a Auth) FindUser(name string) (User, bool) {
	for _, u := range a.Users {
		if u.Name == name {
			return u, true
		}
	}
	return User{}, false
}

type cfgWrapper struct {
	Server srvCfgWrapper  `json:"server"`
	Auth   authCfgWrapper `json:"auth"`
}
type srvCfgWrapper struct {
	Address           string `json:"address,omitempty"`
	ReadHeaderTimeout string `json:"read_header_timeout,omitempty"`
	ReadTimeout       string `json:"read_timeout,omitempty"`
	WriteTimeout      string `json:"write_timeout,omitempty"`
	RequestIDFormat   string `json:"request_id_format,omitempty"`
	StaticDir         string `json:"static_dir,omitempty"`
}
type authCfgWrapper struct {
	CookieName    string `json:"cookie_name,omitempty"`
	TokenLifetime string `json:"token_lifetime,omitempty"`
	Users         []User `json:"users,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}
	if c.Server.ReadHeaderTimeout.Valid {
		w.Server.ReadHeaderTimeout = xtime.FormatDuration(c.Server.ReadHeaderTimeout.V, time.Millisecond)
	}
	if c.Server.ReadTimeout.Valid {
		w.Server.ReadTimeout = xtime.FormatDuration(c.Server.ReadTimeout.V, time.Millisecond)
	}
	if c.Server.WriteTimeout.Valid {
		w.Server.WriteTimeout = xtime.FormatDuration(c.Server.WriteTimeout.V, time.Millisecond)
	}
	if c.Server.RequestIDFormat.Valid {
		w.Server.RequestIDFormat = c.Server.RequestIDFormat.V
	}
	if c.Server.StaticDir.Valid {
		w.Server.StaticDir = c.Server.StaticDir.V
	}

	if c.Auth.CookieName.Valid {
		w.Auth.CookieName = c.Auth.CookieName.V
	}
	if c.Auth.TokenLifetime.Valid {
		w.Auth.TokenLifetime = xtime.FormatDuration(c.Auth.TokenLifetime.V, time.Minute)
	}
	w.Auth.Users = c.Auth.Users

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}

	durations := []struct {
		name  string
		value string
		dest  *sql.Null[time.Duration]
	}{
		{"server read header timeout", w.Server.ReadHeaderTimeout, &c.Server.ReadHeaderTimeout},
		{"server read timeout", w.Server.ReadTimeout, &c.Server.ReadTimeout},
		{"server write timeout", w.Server.WriteTimeout, &c.Server.WriteTimeout},
		{"auth token lifetime", w.Auth.TokenLifetime, &c.Auth.TokenLifetime},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		dur, err := xtime.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("failed parsing %s: %w", d.name, err)
		}
		if dur <= 0 {
			return fmt.Errorf("%s must be positive: '%s'", d.name, d.value)
		}
		*d.dest = sql.Null[time.Duration]{V: dur, Valid: true}
	}

	if w.Server.RequestIDFormat != "" {
		switch w.Server.RequestIDFormat {
		case "uuid", "cuid2":
		default:
			return fmt.Errorf("invalid request ID format: '%s'", w.Server.RequestIDFormat)
		}
		c.Server.RequestIDFormat = sql.Null[string]{V: w.Server.RequestIDFormat, Valid: true}
	}

	if w.Server.StaticDir != "" {
		c.Server.StaticDir = sql.Null[string]{V: w.Server.StaticDir, Valid: true}
	}

	if w.Auth.CookieName != "" {
		c.Auth.CookieName = sql.Null[string]{V: w.Auth.CookieName, Valid: true}
	}

	seen := make(map[string]struct{}, len(w.Auth.Users))
	for _, u := range w.Auth.Users {
		if u.ID == 0 || u.Name == "" || u.PasswordHash == "" {
			return fmt.Errorf("invalid user '%s': id, name and password_hash are required", u.Name)
		}
		if _, ok := seen[u.Name]; ok {
			return fmt.Errorf("duplicate user name: '%s'", u.Name)
		}
		seen[u.Name] = struct{}{}
	}
	c.Auth.Users = w.Auth.Users

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Server.Address.Valid {
		c.Server.Address = sql.Null[string]{V: "127.0.0.1:3000", Valid: true}
	}
	if !c.Server.ReadHeaderTimeout.Valid {
		c.Server.ReadHeaderTimeout = sql.Null[time.Duration]{V: 10 * time.Second, Valid: true}
	}
	if !c.Server.ReadTimeout.Valid {
		c.Server.ReadTimeout = sql.Null[time.Duration]{V: 30 * time.Second, Valid: true}
	}
	if !c.Server.WriteTimeout.Valid {
		c.Server.WriteTimeout = sql.Null[time.Duration]{V: time.Minute, Valid: true}
	}
	if !c.Server.RequestIDFormat.Valid {
		c.Server.RequestIDFormat = sql.Null[string]{V: "uuid", Valid: true}
	}
	if !c.Auth.CookieName.Valid {
		c.Auth.CookieName = sql.Null[string]{V: "auth-token", Valid: true}
	}
	if !c.Auth.TokenLifetime.Valid {
		// ~1 week
		c.Auth.TokenLifetime = sql.Null[time.Duration]{V: 7 * 24 * time.Hour, Valid: true}
	}
}
