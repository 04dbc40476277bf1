package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/shootdesk/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
	Workflow WorkflowConfig `toml:"workflow"`
	Board    BoardConfig    `toml:"board"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the daily log file written in dev mode. An empty Dir
// means the platform log dir; relative dirs nest under it.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type WorkflowConfig struct {
	Mode           string `toml:"mode"`            // permissive | strict
	ConflictPolicy string `toml:"conflict_policy"` // fail_open | fail_closed
}

type BoardConfig struct {
	WriteGrace string `toml:"write_grace"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:5437",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Workflow: WorkflowConfig{
			Mode:           string(domain.TransitionModePermissive),
			ConflictPolicy: string(domain.ActiveConflictPolicy),
		},
		Board: BoardConfig{
			WriteGrace: "2s",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if level := strings.TrimSpace(c.Logging.Level); level != "" {
		if _, err := log.ParseLevel(strings.ToLower(level)); err != nil {
			return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
		}
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && strings.Trim(endpoint, "/") == "" {
			return fmt.Errorf("invalid %s: %q", name, endpoint)
		}
	}
	api := strings.Trim(strings.TrimSpace(c.Server.APIEndpoint), "/")
	if api != "" && api == strings.Trim(strings.TrimSpace(c.Server.MCPEndpoint), "/") {
		return fmt.Errorf("server.api_endpoint and server.mcp_endpoint must differ: %q", c.Server.APIEndpoint)
	}

	if _, err := c.TransitionMode(); err != nil {
		return fmt.Errorf("invalid workflow.mode: %w", err)
	}
	if _, err := c.ConflictPolicy(); err != nil {
		return fmt.Errorf("invalid workflow.conflict_policy: %w", err)
	}
	if _, err := c.BoardWriteGrace(); err != nil {
		return err
	}

	return nil
}

// TransitionMode returns the parsed workflow mode.
func (c Config) TransitionMode() (domain.TransitionMode, error) {
	return domain.ParseTransitionMode(c.Workflow.Mode)
}

// ConflictPolicy returns the parsed conflict policy.
func (c Config) ConflictPolicy() (domain.ConflictPolicy, error) {
	return domain.ParseConflictPolicy(c.Workflow.ConflictPolicy)
}

// BoardWriteGrace returns the board write grace period. Empty means zero.
func (c Config) BoardWriteGrace() (time.Duration, error) {
	raw := strings.TrimSpace(c.Board.WriteGrace)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid board.write_grace: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid board.write_grace: %q must be >= 0", raw)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
