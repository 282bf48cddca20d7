package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string
	APIKey string
	DB     db
	Server server
	Sync   syncLimits
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type syncLimits struct {
	MaxBatch int `env:"SYNC_MAX_BATCH"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("RUN_ADDRESS", ":8080")
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("SYNC_MAX_BATCH", 500)

	config := Config{
		Env:    viper.GetString("APP_ENV"),
		APIKey: viper.GetString("API_KEY"),
		DB: db{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: server{RunAddress: viper.GetString("RUN_ADDRESS")},
		Sync:   syncLimits{MaxBatch: viper.GetInt("SYNC_MAX_BATCH")},
	}

	if config.DB.DatabaseURI == "" {
		log.Fatalln("DATABASE_URI is required")
	}
	if config.APIKey == "" {
		log.Fatalln("API_KEY is required")
	}

	return &config
}
