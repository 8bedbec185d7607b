package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DBFileName is the name of the SQLite file inside the data directory.
const DBFileName = "video_flow.db"

// Config represents the main configuration for videoflow.
type Config struct {
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	LogLevel string         `toml:"log_level"` // debug, info, warn or error
	Database DatabaseConfig `toml:"database"`
	Backup   BackupConfig   `toml:"backup"`
	Vaults   []VaultConfig  `toml:"vaults"`
}

// DatabaseConfig represents configuration for the project database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type          string `toml:"type"`               // "sqlite" or "memory"
	DataDir       string `toml:"data_dir,omitempty"` // only used for type=sqlite
	BusyTimeoutMS int    `toml:"busy_timeout_ms,omitempty"`
}

// FilePath returns the database file for type=sqlite, or ":memory:".
func (c DatabaseConfig) FilePath() string {
	if c.Type == "memory" {
		return ":memory:"
	}
	return filepath.Join(c.DataDir, DBFileName)
}

// BackupConfig holds the age key pair used for encrypted backups.
type BackupConfig struct {
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VaultConfig represents a place to push database snapshots.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // S3-compatible services; implies path-style addressing
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// Vault returns the vault called name, or the first vault when name is empty.
func (c *Config) Vault(name string) (VaultConfig, error) {
	if len(c.Vaults) == 0 {
		return VaultConfig{}, fmt.Errorf("no vaults configured")
	}
	if name == "" {
		return c.Vaults[0], nil
	}
	for _, v := range c.Vaults {
		if v.Name == name {
			return v, nil
		}
	}
	return VaultConfig{}, fmt.Errorf("no vault named %q", name)
}

// NewConfig creates a Config rooted at baseDir with default paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Database: DatabaseConfig{
			Type:          "sqlite",
			DataDir:       filepath.Join(baseDir, "db"),
			BusyTimeoutMS: 5000,
		},
		Backup: BackupConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "videoflow.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "videoflow.key"),
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.Database.Type {
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("database.data_dir required for sqlite database")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database type: %q", c.Database.Type)
	}

	if c.Database.BusyTimeoutMS < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}

	seen := map[string]bool{}
	for i, v := range c.Vaults {
		if v.Name == "" {
			return fmt.Errorf("vaults[%d]: name required", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("vaults[%d]: duplicate name %q", i, v.Name)
		}
		seen[v.Name] = true
		switch v.Type {
		case "memory":
		case "filesystem":
			if v.FSVaultRoot == "" {
				return fmt.Errorf("vault %q: fs_vault_root required", v.Name)
			}
		case "s3":
			if v.S3Bucket == "" {
				return fmt.Errorf("vault %q: s3_bucket required", v.Name)
			}
			if (v.S3AccessKeyID == "") != (v.S3SecretAccessKey == "") {
				return fmt.Errorf("vault %q: s3_access_key_id and s3_secret_access_key must be set together", v.Name)
			}
		default:
			return fmt.Errorf("vault %q: unknown type %q", v.Name, v.Type)
		}
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads and validates a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
