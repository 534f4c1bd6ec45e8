package printing

import (
	"strings"
	"time"

	"github.com/shipprint/backend/internal/domain/shipping"
)

// UnknownDate replaces the date part of a key when the record has no timestamp
const UnknownDate = "unknown-date"

// DocumentExtension is appended to keys to form document file names
const DocumentExtension = ".pdf"

// SanitizeIdentifier replaces every rune outside [A-Za-z0-9-_] with '_', one for one
func SanitizeIdentifier(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DatePrefix formats a business timestamp as YYYY-MM-DD in UTC
func DatePrefix(t *time.Time) string {
	if t == nil || t.IsZero() {
		return UnknownDate
	}
	return t.UTC().Format(time.DateOnly)
}

// DocumentKey derives the idempotency key "<prefix>-<YYYY-MM-DD>-<sanitized-identifier>"
func DocumentKey(kind DocKind, businessTime *time.Time, identifier string) string {
	return kind.String() + "-" + DatePrefix(businessTime) + "-" + SanitizeIdentifier(identifier)
}

// KeyFor derives the document key of a record
func KeyFor(rec shipping.Record) string {
	return DocumentKey(DocKindFor(rec.Kind()), rec.BusinessTime(), rec.Identifier())
}

// FileName returns the document file name for a key
func FileName(key string) string {
	return key + DocumentExtension
}
