package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Player launch defaults; individual play flags override these
	Output          string
	Layer           int
	DBusName        string
	BackgroundColor string
	NoBackground    bool
	Loop            bool

	// Data directory for the session history database
	DataDir string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetDefault("output", "both")
	v.SetDefault("layer", 0)
	v.SetDefault("dbus_name", "org.mpris.omxplayer")
	v.SetDefault("background_color", "0xff000000")
	v.SetDefault("no_background", false)
	v.SetDefault("loop", false)
	v.SetDefault("data_dir", defaultDataDir())

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	v.SetEnvPrefix("OMXCTL")
	v.AutomaticEnv()

	cfg := &Config{
		Output:          v.GetString("output"),
		Layer:           v.GetInt("layer"),
		DBusName:        v.GetString("dbus_name"),
		BackgroundColor: v.GetString("background_color"),
		NoBackground:    v.GetBool("no_background"),
		Loop:            v.GetBool("loop"),
		DataDir:         v.GetString("data_dir"),
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "omxctl")
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// defaultDataDir returns the default location for persistent data
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "omxctl")
}
