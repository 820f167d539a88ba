package internal

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// MCP transports.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Store   StoreConfig       `yaml:"store"`
	MCP     MCPConfig         `yaml:"mcp"`
	Journal JournalConfig     `yaml:"journal"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.MCP.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig locates the notes file.
type StoreConfig struct {
	Path string `yaml:"path"`
	// Lock enables an exclusive flock on <path>.lock around every operation.
	// It has no effect on Windows, where only the in-process mutex applies.
	Lock bool `yaml:"lock"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MCPConfig selects how the MCP tools are served.
type MCPConfig struct {
	Transport string `yaml:"transport"`
	Endpoint  string `yaml:"endpoint"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	if c.Transport == "" {
		c.Transport = TransportHTTP
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Transport, validation.In(TransportHTTP, TransportStdio)),
	); err != nil {
		return err
	}
	if c.Transport == TransportHTTP && !strings.HasPrefix(c.Endpoint, "/") {
		return fmt.Errorf("mcp: endpoint must start with '/', got %q", c.Endpoint)
	}
	return nil
}

// JournalConfig holds the SQLite history database path.
// An empty path disables the journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether mutations are journaled.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration for the REST API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with the defaults of a local single-user setup.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8002,
			},
		},
		Store: StoreConfig{
			Path: "./notes.txt",
			Lock: true,
		},
		MCP: MCPConfig{
			Transport: TransportHTTP,
			Endpoint:  "/mcp",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
