package shipping

import "time"

// RecordKind identifies which print job a record belongs to
type RecordKind string

const (
	RecordKindOrder RecordKind = "ORDER"
	RecordKindLabel RecordKind = "LABEL"
)

// Record is a unit of work for one delivery attempt.
// Implemented by *Order and *Label.
type Record interface {
	// Kind returns the record kind
	Kind() RecordKind
	// ObjectID returns the platform object identifier
	ObjectID() string
	// Identifier returns the human identifier used for document naming
	Identifier() string
	// BusinessTime returns the record's own timestamp, or nil when unknown
	BusinessTime() *time.Time
}

var (
	_ Record = (*Order)(nil)
	_ Record = (*Label)(nil)
)
