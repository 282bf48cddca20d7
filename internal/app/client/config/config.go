package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".possync"
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`
	ConfigDir     string `mapstructure:"config_dir"`
	DataPath      string `mapstructure:"data_path"`
	DeviceID      string `mapstructure:"device_id"`
	DeviceName    string `mapstructure:"device_name"`
	APIKey        string `mapstructure:"api_key"`
	EnableTLS     bool   `mapstructure:"enable_tls"`

	SyncInterval      int `mapstructure:"sync_interval_seconds"`
	ProbeInterval     int `mapstructure:"probe_interval_seconds"`
	RetryMaxAttempts  int `mapstructure:"retry_max_attempts"`
	RetryInitialDelay int `mapstructure:"retry_initial_delay_ms"`
	RetryMultiplier   int `mapstructure:"retry_multiplier"`
}

// MustLoad loads the agent configuration from the environment, honoring an
// optional .env file next to the working directory.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("DEVICE_NAME", hostname())
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 30)
	viper.SetDefault("PROBE_INTERVAL_SECONDS", 5)
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_INITIAL_DELAY_MS", 500)
	viper.SetDefault("RETRY_MULTIPLIER", 2)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("failed to create config directory: %v\n", err)
	}

	config := &Config{
		Env:               viper.GetString("APP_ENV"),
		ServerAddress:     viper.GetString("SERVER_ADDRESS"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		ConfigDir:         configDir,
		DataPath:          filepath.Join(configDir, "possync.db"),
		DeviceID:          viper.GetString("DEVICE_ID"),
		DeviceName:        viper.GetString("DEVICE_NAME"),
		APIKey:            viper.GetString("API_KEY"),
		EnableTLS:         viper.GetBool("ENABLE_TLS"),
		SyncInterval:      viper.GetInt("SYNC_INTERVAL_SECONDS"),
		ProbeInterval:     viper.GetInt("PROBE_INTERVAL_SECONDS"),
		RetryMaxAttempts:  viper.GetInt("RETRY_MAX_ATTEMPTS"),
		RetryInitialDelay: viper.GetInt("RETRY_INITIAL_DELAY_MS"),
		RetryMultiplier:   viper.GetInt("RETRY_MULTIPLIER"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address must not be empty")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds must be positive")
	}
	return nil
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
