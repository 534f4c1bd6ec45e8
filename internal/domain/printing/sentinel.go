package printing

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned by sentinel stores for empty or unsafe keys
var ErrInvalidKey = errors.New("invalid sentinel key")

// SentinelStore records which documents were already submitted for printing.
// The presence of a key is the only dedup signal; its content is informational.
type SentinelStore interface {
	// Has reports whether key is present. Any failure other than "not found"
	// must be returned as an error, never as false.
	Has(ctx context.Context, key string) (bool, error)

	// Put marks key as delivered. A partially written marker must never be
	// reported present by Has.
	Put(ctx context.Context, key string, content []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}

// ValidateKey rejects keys that cannot be stored safely in any backend
func ValidateKey(key string) error {
	if key == "" || SanitizeIdentifier(key) != key {
		return ErrInvalidKey
	}
	return nil
}
