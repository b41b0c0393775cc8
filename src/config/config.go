package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DatabasePath string
	LogLevel     string
	OutputDir    string

	// AbortOnBadRow controls the import boundary policy for rows that fail
	// to parse: true aborts the batch, false skips the row and continues.
	AbortOnBadRow bool
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	Cfg = &AppConfig{
		DatabasePath:  getEnv("DATABASE_PATH", "./tradeherder.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		OutputDir:     getEnv("OUTPUT_DIR", "./out"),
		AbortOnBadRow: getEnvAsBool("ABORT_ON_BAD_ROW", true),
	}

	log.Printf("Configuration loaded: LogLevel=%s, DBPath=%s, OutputDir=%s",
		Cfg.LogLevel, Cfg.DatabasePath, Cfg.OutputDir)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}
