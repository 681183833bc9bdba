// Package config provides XML-based configuration for the document organizer.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"DocumentOrganizer"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Preview extraction and batch lifetime
	Processing ProcessingConfig `xml:"Processing"`

	// Language model endpoint
	Model ModelConfig `xml:"Model"`

	// Interpretation of model answers and reorganization
	Classifier ClassifierConfig `xml:"Classifier"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory      string `xml:"DataDirectory"`
	UploadsDirectory   string `xml:"UploadsDirectory"`
	OrganizedDirectory string `xml:"OrganizedDirectory"`
	PlansDirectory     string `xml:"PlansDirectory"`
	EnablePlanLedger   bool   `xml:"EnablePlanLedger"`
}

// ProcessingConfig contains preview and batch settings
type ProcessingConfig struct {
	PageBudget             int `xml:"PageBudget"`
	MaxBatches             int `xml:"MaxBatches"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// ModelConfig describes the classification service
type ModelConfig struct {
	Provider          string `xml:"Provider"`
	Host              string `xml:"Host"`
	Name              string `xml:"Name"`
	APIKey            string `xml:"APIKey"`
	TimeoutSeconds    int    `xml:"TimeoutSeconds"`
	RequestsPerMinute int    `xml:"RequestsPerMinute"`
}

// ClassifierConfig selects how answers are decoded and applied
type ClassifierConfig struct {
	Mode         string `xml:"Mode"`
	OrganizeMode string `xml:"OrganizeMode"`
	PromptFile   string `xml:"PromptFile"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         5000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  60,
			WriteTimeout: 300,
			IdleTimeout:  120,
			BodyLimit:    "200M",
		},
		Storage: StorageConfig{
			DataDirectory:      "./data",
			UploadsDirectory:   "./data/uploads",
			OrganizedDirectory: "./data/organized",
			PlansDirectory:     "./data/plans",
			EnablePlanLedger:   true,
		},
		Processing: ProcessingConfig{
			PageBudget:             2,
			MaxBatches:             50,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Model: ModelConfig{
			Provider:          "ollama",
			Host:              "http://localhost:11434",
			Name:              "mistral:7b-instruct-q4_K_M",
			TimeoutSeconds:    300,
			RequestsPerMinute: 0,
		},
		Classifier: ClassifierConfig{
			Mode:         "legacy",
			OrganizeMode: "top-level",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file, writing the defaults there
// first if it does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Document Organizer Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR relocates every storage directory beneath it, including ones
	// set explicitly in the file.
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
		c.Storage.OrganizedDirectory = filepath.Join(dataDir, "organized")
		c.Storage.PlansDirectory = filepath.Join(dataDir, "plans")
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Model.Host = host
	}
	if name := os.Getenv("MODEL_NAME"); name != "" {
		c.Model.Name = name
	}
	if provider := os.Getenv("MODEL_PROVIDER"); provider != "" {
		c.Model.Provider = provider
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Model.APIKey = key
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.OrganizedDirectory,
		&c.Storage.PlansDirectory,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}

	if c.Classifier.PromptFile != "" && !filepath.IsAbs(c.Classifier.PromptFile) {
		c.Classifier.PromptFile = filepath.Join(configDir, c.Classifier.PromptFile)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ModelTimeout returns the HTTP timeout for model calls.
func (c *AppConfig) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// SessionTimeout returns how long idle batches are kept.
func (c *AppConfig) SessionTimeout() time.Duration {
	return time.Duration(c.Processing.SessionTimeoutMinutes) * time.Minute
}

// CleanupInterval returns the period of the batch cleanup loop.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Processing.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Processing.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.OrganizedDirectory,
	}
	if c.Storage.EnablePlanLedger {
		dirs = append(dirs, c.Storage.PlansDirectory)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
