// Package config loads application configuration from an optional YAML file
// with ${VAR} environment expansion, falling back to environment variables
// for the settings the original deployment used.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Local  LocalConfig  `yaml:"local"`
	AI     AIConfig     `yaml:"ai"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MongoConfig configures the networked document store.
type MongoConfig struct {
	// URI is the connection string probed at startup. Unreachability is not
	// an error; the local backend is used instead.
	URI          string        `yaml:"uri"`
	Database     string        `yaml:"database"`
	Collection   string        `yaml:"collection"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// LocalConfig configures the embedded fallback store.
type LocalConfig struct {
	// Path is the sqlite database file, created on first use.
	Path string `yaml:"path"`
}

// AIConfig configures the generation proxy.
type AIConfig struct {
	// APIKey authenticates against the Gemini API. When empty every
	// generation request fails with a configuration error.
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Load reads configuration from path when given, overlays environment
// variables for settings the file leaves empty, and applies defaults.
// An empty path yields a pure environment/default configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		// #nosec G304 -- path is from CLI args, controlled by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		data = []byte(expandEnvVars(string(data)))

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyEnv fills unset fields from the environment. Variable names match the
// original deployment so existing .env files keep working.
func applyEnv(cfg *Config) {
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = os.Getenv("MONGO_DETAILS")
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Local.Path == "" {
		cfg.Local.Path = os.Getenv("LOCAL_DB_PATH")
	}
	if cfg.Server.Address == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Server.Address = ":" + port
		}
	}
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "blog_db"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "posts"
	}
	if cfg.Mongo.ProbeTimeout == 0 {
		cfg.Mongo.ProbeTimeout = 2 * time.Second
	}
	if cfg.Local.Path == "" {
		cfg.Local.Path = "local_posts.db"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.0-flash"
	}
	if cfg.AI.RetryDelay == 0 {
		cfg.AI.RetryDelay = 20 * time.Second
	}
}
