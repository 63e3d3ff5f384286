package commons

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"orderenricher/internal/config"
)

// LoadConfig builds the configuration from defaults, the YAML file at path
// (skipped when it does not exist) and the environment, in that order. A
// .env file in the working directory is loaded into the environment first.
func LoadConfig(path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := config.Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	return cfg, nil
}
