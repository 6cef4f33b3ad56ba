// Package config loads terminal settings from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the station terminal settings. CLI flags override these.
type Config struct {
	Store       string // "file" or "postgres"
	DataDir     string // file store directory
	DSN         string // postgres DSN when Store == "postgres"
	StationName string // printed on receipts, prefixes export filenames
	ReceiptDir  string // where receipt images are written
}

// Load reads .env (best effort) and the environment, applying defaults.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Store:       getEnv("FUELTRACK_STORE", "file"),
		DataDir:     getEnv("FUELTRACK_DATA_DIR", "data"),
		DSN:         getEnv("FUELTRACK_DSN", ""),
		StationName: getEnv("FUELTRACK_STATION_NAME", "ANH HUY GAS STATION"),
		ReceiptDir:  getEnv("FUELTRACK_RECEIPT_DIR", "receipts"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
