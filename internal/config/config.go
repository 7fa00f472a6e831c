package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full application configuration, read from an optional YAML
// file and overridable via environment variables.
type Config struct {
	GitHub  GitHub  `yaml:"github"`
	Backend Backend `yaml:"backend"`
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
}

// GitHub configures access to the code-hosting API.
type GitHub struct {
	APIURL string `yaml:"api_url" env:"GITHUB_API_URL" env-default:"https://api.github.com"`
	Token  string `yaml:"token" env:"GITHUB_TOKEN"`
}

// Backend configures the GitAid review backend.
type Backend struct {
	URL string `yaml:"url" env:"GITAID_BACKEND_URL" env-default:"http://localhost:8000"`
}

type HTTP struct {
	Timeout time.Duration `yaml:"timeout" env:"GITAID_HTTP_TIMEOUT" env-default:"30s"`
}

// Log configures the file logger. An empty path disables logging entirely;
// the TUI owns stdout so logs never go there.
type Log struct {
	Path  string `yaml:"path" env:"GITAID_LOG_PATH"`
	Level string `yaml:"level" env:"GITAID_LOG_LEVEL" env-default:"info"`
}

// New loads the configuration. When path is empty or the file does not
// exist, environment variables and defaults alone are used.
func New(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("cannot read config %q: %w", path, err)
			}
			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	return &cfg, nil
}
