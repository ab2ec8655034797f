package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
	"github.com/fivetwenty-io/ghost-client/pkg/ghostclient"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"

	NotAvailable = "N/A"

	defaultJSONIndent = 2
)

// Static errors used throughout the commands package.
var (
	ErrURLRequired       = errors.New("Ghost URL is required (use --url or set GHOSTCTL_URL)")
	ErrIDOrSlugRequired  = errors.New("an id or slug argument is required")
	ErrTitleRequired     = errors.New("a title is required")
	ErrNameRequired      = errors.New("a name is required")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrFileRequired      = errors.New("a file argument is required")
)

// CLIConfig is the persisted ghostctl configuration.
type CLIConfig struct {
	URL          string `yaml:"url,omitempty"`
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	AdminKey     string `yaml:"admin_key,omitempty"`
	Username     string `yaml:"username,omitempty"`
}

func configPath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, ".ghostctl", "config.yml"), nil
}

// loadConfig reads the persisted configuration; a missing file yields an
// empty config.
func loadConfig() *CLIConfig {
	config := &CLIConfig{}

	path, err := configPath()
	if err != nil {
		return config
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

// saveConfig writes the configuration back to the config file.
func saveConfig(config *CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// effectiveConfig merges flags and environment over the persisted file.
func effectiveConfig() *CLIConfig {
	config := loadConfig()

	if url := viper.GetString("url"); url != "" {
		config.URL = url
	}

	if id := viper.GetString("client_id"); id != "" {
		config.ClientID = id
	}

	if secret := viper.GetString("client_secret"); secret != "" {
		config.ClientSecret = secret
	}

	if key := viper.GetString("admin_key"); key != "" {
		config.AdminKey = key
	}

	return config
}

// createClient builds an API client from the effective configuration.
func createClient(ctx context.Context) (ghost.Client, error) {
	config := effectiveConfig()
	if config.URL == "" {
		return nil, ErrURLRequired
	}

	clientConfig := &ghost.Config{
		BaseURL:      config.URL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		AdminKey:     config.AdminKey,
	}

	if viper.GetBool("verbose") {
		clientConfig.Logger = ghost.NewDefaultLogger("debug")
		clientConfig.Debug = true
	}

	return ghostclient.New(ctx, clientConfig)
}

// renderStructured prints any value as JSON or YAML.
func renderStructured(value interface{}, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(defaultJSONIndent)

		return encoder.Encode(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, format)
	}
}

// recordField returns a display value for one field of a record.
func recordField(record ghost.Record, field string) string {
	value := record.String(field)
	if value == "" {
		return NotAvailable
	}

	return value
}

// truncate shortens long cell values for table output.
func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}

	return value[:max-3] + "..."
}
