// Package config reads layered runtime configuration: a YAML file, overridden
// by process environment variables (optionally seeded from a .env file).
package config

import (
	"io"
	"time"
)

// Config retrieves typed configuration values. Missing keys yield zero values.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer and scales it to seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer and scales it to minutes.
	GetMinute(key string) time.Duration

	// GetArray reads either a YAML list or a "<a>,<b>,..." string. Empty
	// elements are dropped.
	GetArray(key string) []string
}
