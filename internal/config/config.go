package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	API      APIConfig      `json:"api"`
	Reviewer ReviewerConfig `json:"reviewer"`
}

type APIConfig struct {
	// BaseURL points at the survey-analysis backend. It has lived at
	// localhost, a LAN address, and a loopback address at different times,
	// so it is never hard-coded.
	BaseURL     string `json:"baseUrl"`
	TimeoutSecs int    `json:"timeoutSecs"`
}

type ReviewerConfig struct {
	// AppliedBy is the attribution string sent with manual overrides. The
	// backend does not authenticate reviewers; this is a label, not an
	// identity.
	AppliedBy string `json:"appliedBy"`
}

func LoadConfig(path string) (*Config, error) {
	// A .env next to the binary may supply the overrides below.
	godotenv.Load()

	if path == "" {
		path = getDefaultConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SURVEY_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SURVEY_APPLIED_BY"); v != "" {
		cfg.Reviewer.AppliedBy = v
	}
}

func getDefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".survey-tui", "config.json")
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://127.0.0.1:5000",
			TimeoutSecs: 15,
		},
		Reviewer: ReviewerConfig{
			AppliedBy: "dashboard_reviewer",
		},
	}
}
