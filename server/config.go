package main

import (
	"os"

	"github.com/joho/godotenv"
)

type config struct {
	DatabaseURL string
	ListenAddr  string
	MetricsAddr string
	Layout      string
	LayoutsFile string
	AutoID      bool
	Debug       bool
}

// loadConfig reads .env when present, then the process environment.
func loadConfig() (config, bool) {
	loaded := godotenv.Load() == nil
	return config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9100"),
		Layout:      getEnv("GRAPH_LAYOUT", ""),
		LayoutsFile: getEnv("GRAPH_LAYOUTS_FILE", ""),
		AutoID:      getEnvBool("GRAPH_AUTO_ID", false),
		Debug:       getEnvBool("LOG_DEBUG", false),
	}, loaded
}

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}
