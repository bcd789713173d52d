package config

import "os"

// Storage backend selectors.
const (
	BackendDatabase = "database"
	BackendFile     = "file"
)

// Config holds all configuration for the report service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Storage configuration
	StorageBackend string
	DataFile       string
	UploadsDir     string

	// Lifecycle configuration
	StrictLifecycle bool
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "civicreport"),

		// Server defaults
		Port: getEnv("PORT", "4000"),

		// Storage defaults
		StorageBackend: getEnv("STORAGE_BACKEND", BackendDatabase),
		DataFile:       getEnv("DATA_FILE", "data.json"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),

		// Lifecycle defaults
		StrictLifecycle: getBoolEnv("STRICT_LIFECYCLE", true),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
