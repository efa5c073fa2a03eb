package config

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem the CLI reads and writes through. Tests swap
// it for an in-memory filesystem.
var AppFs = afero.NewOsFs()

// Config holds the CLI configuration.
type Config struct {
	Dialect    string
	OutputPath string
}

// LoadConfig reads configuration from the config file, environment
// variables and .env files, in increasing priority.
func LoadConfig() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".sqlforge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "sqlforge"))

	viper.SetEnvPrefix("SQLFORGE")
	viper.AutomaticEnv()

	viper.SetDefault("dialect", "duckdb")
	viper.SetDefault("output_path", "")

	// A missing config file is fine; defaults and env cover it.
	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	return &Config{
		Dialect:    viper.GetString("dialect"),
		OutputPath: viper.GetString("output_path"),
	}, nil
}

// SaveConfig writes the configuration to the user config directory.
func SaveConfig(cfg *Config) error {
	viper.Set("dialect", cfg.Dialect)
	viper.Set("output_path", cfg.OutputPath)

	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", "sqlforge")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return err
	}

	return viper.WriteConfigAs(filepath.Join(configPath, ".sqlforge.yaml"))
}
