package utils

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/descent-db/descent/errs"
)

var loadOnce sync.Once

// LoadEnv loads a .env file from the working directory, if present.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("ℹ️  No .env file found, continuing...")
		}
	})
}

// DatabaseURL returns the configured engine URL. Postgres URLs are passed
// through to the driver; "sqlite:path" selects the embedded engine.
func DatabaseURL() (string, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", errs.New(errs.KindConfig, "DATABASE_URL not set (in .env or environment)")
	}
	return url, nil
}
