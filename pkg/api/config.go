package api

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Estimate EstimateConfig
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type EstimateConfig struct {
	Timeout    time.Duration
	MaxSamples int
	MaxWorkers int
	MaxRounds  int
	LogLevel   string
}

// LoadConfig reads the server configuration from the environment
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address:      getEnv("SERVER_ADDRESS", ":8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 5*time.Minute),
		},
		Estimate: EstimateConfig{
			Timeout:    getDuration("ESTIMATE_TIMEOUT", 2*time.Minute),
			MaxSamples: getInt("MAX_SAMPLES", 5_000_000),
			MaxWorkers: getInt("MAX_WORKERS", 0),
			MaxRounds:  getInt("MAX_ROUNDS", 1_000_000),
			LogLevel:   getEnv("ESTIMATE_LOG_LEVEL", "warn"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
