package utils

import (
	"os"
	"strconv"
)

// GetEnv returns the value of key, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetEnvInt parses key as an integer, falling back on absence or parse errors.
func GetEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// GetEnvFloat parses key as a float, falling back on absence or parse errors.
func GetEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(GetEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

// GetEnvBool reports whether key is "true", or fallback when unset.
func GetEnvBool(key string, fallback bool) bool {
	switch GetEnv(key, "") {
	case "":
		return fallback
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
