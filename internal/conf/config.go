// config.go: This file contains the configuration for the Pokedex-Go application. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// WebServerSettings contains settings for the HTTP server.
type WebServerSettings struct {
	Enabled bool   // true to enable the web server
	Port    string // port for the web server
	Debug   bool   // true to enable debug logging for the web server
}

// SQLiteSettings contains settings for the SQLite database.
type SQLiteSettings struct {
	Enabled bool   // true to enable the SQLite store
	Path    string // path to the SQLite database file
}

// MySQLSettings contains settings for the MySQL database.
type MySQLSettings struct {
	Enabled  bool   // true to enable the MySQL store
	Username string // MySQL username
	Password string // MySQL password
	Host     string // MySQL host
	Port     string // MySQL port
	Database string // MySQL database name
}

// OutputSettings selects and configures the entity store backend.
type OutputSettings struct {
	SQLite SQLiteSettings // SQLite store settings
	MySQL  MySQLSettings  // MySQL store settings
}

// MediaSettings contains settings for uploaded image assets.
type MediaSettings struct {
	Path          string // path to the image asset directory
	MaxUploadSize int64  // maximum upload size in bytes
}

// SecuritySettings contains settings for authentication.
type SecuritySettings struct {
	JWTSecret   string // secret used to sign access tokens
	TokenExpiry int    // access token lifetime in hours
}

// Settings contains all runtime configuration for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	Main struct {
		Name string // name of the node/instance
		Log  struct {
			Enabled bool   // true to enable file logging
			Path    string // path to the log file
		}
	}

	WebServer WebServerSettings // web server settings
	Output    OutputSettings    // entity store settings
	Media     MediaSettings     // image asset settings
	Security  SecuritySettings  // authentication settings

	Version   string // runtime value, filled at build
	BuildDate string // runtime value, filled at build
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the global settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal config into struct
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Environment variables override file values, POKEDEX_WEBSERVER_PORT etc.
	// Nested keys use dots internally, the replacer maps them to underscores.
	viper.SetEnvPrefix("pokedex")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// Config file not found, create one from defaults
		return createDefaultConfig(configPaths[0])
	}

	return nil
}

// createDefaultConfig writes the current (default) settings as a config file.
func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(configPath, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("error marshaling default settings: %w", err)
	}

	configFilePath := filepath.Join(configPath, "config.yaml")
	if err := os.WriteFile(configFilePath, out, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	log.Printf("Created default config file at %s", configFilePath)
	return viper.ReadInConfig()
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the settings instance, initializing it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GetDefaultConfigPaths returns the directories that are searched for a config file.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user directory: %w", err)
	}

	configPaths := []string{
		filepath.Join(homeDir, ".config", "pokedex-go"),
		".",
	}

	return configPaths, nil
}

// GetBasePath expands a possibly relative directory to an absolute one,
// creating it if it does not exist.
func GetBasePath(path string) string {
	basePath := viper.GetString("basepath")
	if basePath != "" {
		path = filepath.Join(basePath, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		if err := os.MkdirAll(absPath, 0o755); err != nil {
			log.Printf("Failed to create directory %s: %v", absPath, err)
		}
	}

	return absPath
}
