package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HTTPPort     string
	DataDir      string
	KafkaBrokers []string
	KafkaTopic   string
	AuditWorkers int
}

// Load reads the environment, trying .env files in the working directory and
// its parents first, then .example.env as a development fallback.
func Load() Config {
	loadEnv()

	return Config{
		HTTPPort:     getString("HTTP_PORT", "9000"),
		DataDir:      getString("DATA_DIR", "data"),
		KafkaBrokers: splitList(getString("KAFKA_BROKERS", "")),
		KafkaTopic:   getString("KAFKA_TOPIC", "audit_logs"),
		AuditWorkers: getInt("AUDIT_WORKERS", 2),
	}
}

func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		zap.L().Warn("Could not determine working directory", zap.Error(err))
		return
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			zap.L().Info("Loaded environment variables", zap.String("path", envPath))
			return
		}
	}

	for _, envPath := range possiblePaths {
		examplePath := filepath.Join(filepath.Dir(envPath), ".example.env")
		if err := godotenv.Load(examplePath); err == nil {
			zap.L().Info("Loaded environment variables", zap.String("path", examplePath))
			return
		}
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
