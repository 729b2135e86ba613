package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config is everything the bot reads from the environment. A .env file in
// the working directory is loaded first when present.
type Config struct {
	DiscordToken string

	StorageBackend string
	DatabaseURL    string
	RedisURL       string
	DataDir        string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	JWTSecret string
	APIPort   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		DatabaseURL:    os.Getenv("DB_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DataDir:        getEnv("DATA_DIR", "data"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		APIPort:        os.Getenv("API_PORT"),
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is not set")
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return nil, errors.New("DB_URL is required when STORAGE_BACKEND=postgres")
	}
	if cfg.APIPort != "" && cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required when API_PORT is set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
