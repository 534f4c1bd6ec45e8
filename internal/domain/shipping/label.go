package shipping

import "time"

// Label is a purchased shipping label (a successful platform transaction)
type Label struct {
	ID             string
	Status         string
	CreatedAt      *time.Time
	TrackingNumber string
	LabelURL       string
}

// Kind implements Record
func (l *Label) Kind() RecordKind { return RecordKindLabel }

// ObjectID implements Record
func (l *Label) ObjectID() string { return l.ID }

// Identifier returns the tracking number, falling back to the transaction ID
func (l *Label) Identifier() string {
	if l.TrackingNumber != "" {
		return l.TrackingNumber
	}
	if l.ID != "" {
		return l.ID
	}
	return "unknown"
}

// BusinessTime returns the creation time
func (l *Label) BusinessTime() *time.Time { return l.CreatedAt }
