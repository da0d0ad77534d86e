package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnv = sync.OnceFunc(func() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}
})

// Config answers the value of a required environment variable, exiting
// when unset.
func Config(envVar string) string {
	loadEnv()

	envVarValue := os.Getenv(envVar)
	if envVarValue == "" {
		fmt.Fprintf(os.Stderr, "%s not set\n", envVar)
		os.Exit(1)
	}

	return envVarValue
}

// ConfigOr answers the value of an optional environment variable, falling
// back to the given default when unset.
func ConfigOr(envVar, fallback string) string {
	loadEnv()

	if value := os.Getenv(envVar); value != "" {
		return value
	}

	return fallback
}
