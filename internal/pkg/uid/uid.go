// Package uid generates identifiers: numeric snowflake ids for rows and
// string UUIDs for correlation ids, token ids and object keys.
package uid

// NumberID yields sortable 64-bit identifiers.
type NumberID interface {
	Generate() int64
}

// StringID yields opaque string identifiers.
type StringID interface {
	Generate() string
}
