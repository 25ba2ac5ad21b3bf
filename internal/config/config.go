// Package config loads screener settings from file, environment and flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/anonymize"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/engine"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/scoring"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SCREENER_SERVER_PORT
	EnvPrefix = "SCREENER"
	// FileName is the config file looked up in the working directory
	FileName = "screener"
	appDir   = "ResumeScreener"
)

// Config holds application configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" json:"log"`
	Server  ServerConfig  `mapstructure:"server" json:"server"`
	Store   StoreConfig   `mapstructure:"store" json:"store"`
	Uploads UploadsConfig `mapstructure:"uploads" json:"uploads"`
	Scoring ScoringConfig `mapstructure:"scoring" json:"scoring"`
	Google  GoogleConfig  `mapstructure:"google" json:"google"`
	Gmail   GmailConfig   `mapstructure:"gmail" json:"gmail"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json" json:"json"`
	Debug bool `mapstructure:"debug" json:"debug"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" json:"port"`
}

type StoreConfig struct {
	JobsFile string `mapstructure:"jobs_file" json:"jobs_file"`
}

type UploadsConfig struct {
	Dir      string `mapstructure:"dir" json:"dir"`
	MaxFiles int    `mapstructure:"max_files" json:"max_files"`
}

type ScoringConfig struct {
	Provider           string  `mapstructure:"provider" json:"provider"`
	SkillWeight        float64 `mapstructure:"skill_weight" json:"skill_weight"`
	ExperienceWeight   float64 `mapstructure:"experience_weight" json:"experience_weight"`
	LowSkillThreshold  int     `mapstructure:"low_skill_threshold" json:"low_skill_threshold"`
	MaxExperienceYears int     `mapstructure:"max_experience_years" json:"max_experience_years"`
	Anonymization      string  `mapstructure:"anonymization" json:"anonymization"`
	Workers            int     `mapstructure:"workers" json:"workers"`
}

// GoogleConfig selects the Vertex AI project used by the vertex provider
type GoogleConfig struct {
	Project  string `mapstructure:"project" json:"project"`
	Location string `mapstructure:"location" json:"location"`
	Model    string `mapstructure:"model" json:"model"`
}

// GmailConfig points at the OAuth files for mailbox intake
type GmailConfig struct {
	CredentialsPath string `mapstructure:"credentials_path" json:"credentials_path"`
	TokenPath       string `mapstructure:"token_path" json:"token_path"`
	Subject         string `mapstructure:"subject" json:"subject"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	sc := scoring.DefaultConfig()
	ec := engine.DefaultConfig()
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Store:   StoreConfig{JobsFile: "jobs.json"},
		Uploads: UploadsConfig{Dir: "uploads", MaxFiles: 15},
		Scoring: ScoringConfig{
			Provider:           engine.ProviderHeuristic,
			SkillWeight:        sc.SkillWeight,
			ExperienceWeight:   sc.ExperienceWeight,
			LowSkillThreshold:  sc.LowSkillThreshold,
			MaxExperienceYears: ec.MaxExperienceYears,
			Anonymization:      string(anonymize.ModeLabels),
			Workers:            ec.Workers,
		},
		Google: GoogleConfig{Location: "us-central1", Model: "gemini-1.5-flash"},
		Gmail: GmailConfig{
			CredentialsPath: "credentials.json",
			TokenPath:       "token.json",
			Subject:         "Job Application",
		},
	}
}

// SetDefaults registers every key with its default so environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("store.jobs_file", d.Store.JobsFile)
	v.SetDefault("uploads.dir", d.Uploads.Dir)
	v.SetDefault("uploads.max_files", d.Uploads.MaxFiles)
	v.SetDefault("scoring.provider", d.Scoring.Provider)
	v.SetDefault("scoring.skill_weight", d.Scoring.SkillWeight)
	v.SetDefault("scoring.experience_weight", d.Scoring.ExperienceWeight)
	v.SetDefault("scoring.low_skill_threshold", d.Scoring.LowSkillThreshold)
	v.SetDefault("scoring.max_experience_years", d.Scoring.MaxExperienceYears)
	v.SetDefault("scoring.anonymization", d.Scoring.Anonymization)
	v.SetDefault("scoring.workers", d.Scoring.Workers)
	v.SetDefault("google.project", d.Google.Project)
	v.SetDefault("google.location", d.Google.Location)
	v.SetDefault("google.model", d.Google.Model)
	v.SetDefault("gmail.credentials_path", d.Gmail.CredentialsPath)
	v.SetDefault("gmail.token_path", d.Gmail.TokenPath)
	v.SetDefault("gmail.subject", d.Gmail.Subject)
}

// Load reads the config file at path, or screener.{yaml,json} from the
// working directory when path is empty. A missing default file is not an
// error. Environment variables prefixed with SCREENER_ override file values.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file used by the desktop app
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	dir = filepath.Join(dir, appDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, FileName+".json"), nil
}

// SaveTo saves the configuration as JSON to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be within 1-65535, got %d", c.Server.Port)
	}
	if c.Uploads.MaxFiles <= 0 {
		return fmt.Errorf("uploads.max_files must be positive")
	}
	if c.Scoring.Workers <= 0 {
		return fmt.Errorf("scoring.workers must be positive")
	}
	if c.Scoring.MaxExperienceYears <= 0 {
		return fmt.Errorf("scoring.max_experience_years must be positive")
	}
	if err := c.scoringConfig().Validate(); err != nil {
		return fmt.Errorf("invalid scoring config: %w", err)
	}
	if _, err := anonymize.New(anonymize.Mode(c.Scoring.Anonymization)); err != nil {
		return err
	}

	switch c.Scoring.Provider {
	case engine.ProviderHeuristic:
	case engine.ProviderVertex:
		if c.Google.Project == "" {
			return fmt.Errorf("google.project is required for the %s provider", engine.ProviderVertex)
		}
	default:
		return fmt.Errorf("unknown scoring.provider: %q", c.Scoring.Provider)
	}

	return nil
}

func (c *Config) scoringConfig() scoring.Config {
	return scoring.Config{
		SkillWeight:       c.Scoring.SkillWeight,
		ExperienceWeight:  c.Scoring.ExperienceWeight,
		LowSkillThreshold: c.Scoring.LowSkillThreshold,
	}
}

// Engine converts the scoring settings into an engine configuration
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Scoring:            c.scoringConfig(),
		Provider:           c.Scoring.Provider,
		Anonymization:      anonymize.Mode(c.Scoring.Anonymization),
		MaxExperienceYears: c.Scoring.MaxExperienceYears,
		Workers:            c.Scoring.Workers,
	}
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
