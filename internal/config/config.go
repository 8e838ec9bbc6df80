// Package config loads tool settings from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultBucket            = "coder-analytics-snapshots"
	defaultFirestoreProject  = "coderd"
	defaultFirestoreDatabase = "onboarding"
)

type Config struct {
	CoderURL          string `yaml:"coder_url"`
	Bucket            string `yaml:"bucket"`
	GCPProject        string `yaml:"gcp_project"`
	FirestoreProject  string `yaml:"firestore_project"`
	FirestoreDatabase string `yaml:"firestore_database"`
	Bootcamp          string `yaml:"bootcamp"`
}

// Path returns the config file location: ./coderops.yaml if present,
// otherwise ~/.coderops/config.yaml.
func Path() string {
	pwd, _ := os.Getwd()
	local := filepath.Join(pwd, "coderops.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".coderops", "config.yaml")
}

// Load reads the config file and applies defaults and env overrides. A
// missing file yields a config of pure defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(Path())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", Path(), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config back to its file, creating the directory if needed.
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyDefaults() {
	if v := os.Getenv("CODER_URL"); v != "" {
		c.CoderURL = v
	}
	if c.Bucket == "" {
		c.Bucket = defaultBucket
	}
	if c.FirestoreProject == "" {
		c.FirestoreProject = defaultFirestoreProject
	}
	if c.FirestoreDatabase == "" {
		c.FirestoreDatabase = defaultFirestoreDatabase
	}
	if c.GCPProject == "" {
		c.GCPProject = c.FirestoreProject
	}
}

// SessionToken returns the Coder API token from the environment.
func SessionToken() (string, error) {
	for _, name := range []string{"CODER_SESSION_TOKEN", "CODER_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("CODER_SESSION_TOKEN is not set")
}
