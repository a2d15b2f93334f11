// Package env reads raw process variables that sit outside the typed config,
// such as the platform-assigned PORT.
package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// FirstOf returns the first non-empty variable among keys, in order.
func FirstOf(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}
