// Package config loads optional defaults for rswa commands from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rswa-project/rswa/internal/keygen"
)

// Config represents the YAML configuration file.
type Config struct {
	Generate GenerateDefaults `yaml:"generate"`
}

// GenerateDefaults holds defaults for the generate commands. Empty values
// leave the built-in default in place.
type GenerateDefaults struct {
	Algorithm     string `yaml:"algorithm"`
	Curve         string `yaml:"curve"`
	RSAKeySize    int    `yaml:"rsa_key_size"`
	RSADigestSize string `yaml:"rsa_digest_size"`

	// KeyID is a pointer so that an explicit empty id can be configured.
	KeyID *string `yaml:"key_id"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks every configured value against the accepted sets.
func (c *Config) Validate() error {
	g := c.Generate
	if g.Algorithm != "" {
		if _, err := keygen.ParseAlgorithm(g.Algorithm); err != nil {
			return fmt.Errorf("generate.algorithm: %w", err)
		}
	}
	if g.Curve != "" {
		if _, err := keygen.ParseCurve(g.Curve); err != nil {
			return fmt.Errorf("generate.curve: %w", err)
		}
	}
	if g.RSAKeySize < 0 || g.RSAKeySize > keygen.MaxRSAKeySize {
		return fmt.Errorf("generate.rsa_key_size: must be between 1 and %d", keygen.MaxRSAKeySize)
	}
	if g.RSADigestSize != "" {
		if _, err := keygen.ParseDigestSize(g.RSADigestSize); err != nil {
			return fmt.Errorf("generate.rsa_digest_size: %w", err)
		}
	}
	return nil
}
