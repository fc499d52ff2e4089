package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the trimmed value of key and whether it is set to something non-blank.
func lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

// GetEnv returns the value of key, or def if unset or blank.
func GetEnv(key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

// GetEnvInt parses key as an int; unset or invalid values yield def.
func GetEnvInt(key string, def int) int {
	val, ok := lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

// GetEnvDuration parses key as a Go duration ("90s", "1h30m"). A bare integer is read
// as seconds, matching how Zoom reports token lifetimes.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	val, ok := lookup(key)
	if !ok {
		return def
	}
	if secs, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return def
}

// GetEnvFloat parses key as a float64; unset or invalid values yield def.
func GetEnvFloat(key string, def float64) float64 {
	val, ok := lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return f
}
