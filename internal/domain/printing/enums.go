package printing

import "github.com/shipprint/backend/internal/domain/shipping"

// DocKind represents the kind of physical document that is printed.
// Its value is also the prefix of document keys and file names.
type DocKind string

const (
	DocKindPackingSlip DocKind = "packing-slip"
	DocKindLabel       DocKind = "label"
)

// IsValid checks if the DocKind is a valid value
func (d DocKind) IsValid() bool {
	switch d {
	case DocKindPackingSlip, DocKindLabel:
		return true
	}
	return false
}

// String returns the string representation of DocKind
func (d DocKind) String() string {
	return string(d)
}

// DisplayName returns a human readable name for DocKind
func (d DocKind) DisplayName() string {
	switch d {
	case DocKindPackingSlip:
		return "packing slips"
	case DocKindLabel:
		return "labels"
	default:
		return string(d)
	}
}

// DocKindFor returns the document kind printed for a record kind
func DocKindFor(kind shipping.RecordKind) DocKind {
	if kind == shipping.RecordKindLabel {
		return DocKindLabel
	}
	return DocKindPackingSlip
}

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeLabel4x6 PaperSize = "LABEL_4X6" // 4in x 6in shipping label stock
)

// PointsPerInch is the PDF user-space unit ratio
const PointsPerInch = 72

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	return p == PaperSizeLabel4x6
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Points returns the paper dimensions in points (width, height)
func (p PaperSize) Points() (width, height float64) {
	switch p {
	case PaperSizeLabel4x6:
		return 4 * PointsPerInch, 6 * PointsPerInch
	default:
		return 4 * PointsPerInch, 6 * PointsPerInch
	}
}

// Inches returns the paper dimensions in inches (width, height)
func (p PaperSize) Inches() (width, height float64) {
	w, h := p.Points()
	return w / PointsPerInch, h / PointsPerInch
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// Outcome is the result of one delivery attempt
type Outcome string

const (
	OutcomeDelivered Outcome = "DELIVERED"
	OutcomeSkipped   Outcome = "SKIPPED"
	OutcomeFailed    Outcome = "FAILED"
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	return string(o)
}
