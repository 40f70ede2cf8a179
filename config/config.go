package config

import "os"

type DbConfig interface {
	GetConnectionString() string
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
