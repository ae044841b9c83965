// Package env holds the one-off environment lookups that happen before the
// envconfig-backed configuration is loaded (logger output selection).
package env

import "os"

// Get returns the named environment variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
