package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration of bomcost.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Kafka    KafkaConfig
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig selects the gorm dialector by URL scheme.
type DatabaseConfig struct {
	URL string
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string
	Format string
}

// KafkaConfig configures event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether any broker is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads an optional .env file and builds a Config from the environment.
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Addr: firstNonEmpty(os.Getenv("HTTP_ADDR"), os.Getenv("ADDR"), ":8080"),
		},
		Database: DatabaseConfig{
			URL: firstNonEmpty(os.Getenv("DATABASE_URL"), "file:bomcost.db?cache=shared"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), "info")),
			Format: strings.ToLower(firstNonEmpty(os.Getenv("LOG_FORMAT"), "json")),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   firstNonEmpty(os.Getenv("KAFKA_TOPIC"), "production-events"),
		},
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.Log.Format)
	}

	return cfg, nil
}

// loadDotEnv loads the given files, or .env when none are named. Missing
// files are skipped.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
