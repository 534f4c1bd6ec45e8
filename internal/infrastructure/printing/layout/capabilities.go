package layout

// Font names a typeface variant understood by measurers and sinks
type Font string

const (
	FontRegular Font = "Helvetica"
	FontBold    Font = "Helvetica-Bold"
)

// TextMeasurer reports font metrics used for layout decisions
type TextMeasurer interface {
	// MeasureText returns the rendered width of text in points
	MeasureText(text string, font Font, size float64) float64
	// LineHeight returns the height of one line of text in points
	LineHeight(font Font, size float64) float64
}

// DocumentSink receives drawing operations for one document
type DocumentSink interface {
	// NewPage starts a new page; the engine calls it before drawing on the first page too
	NewPage()
	// DrawText draws text with its line box top-left corner at (x, y)
	DrawText(text string, x, y float64, font Font, size float64)
	// DrawLine strokes a line of the given width
	DrawLine(x1, y1, x2, y2, width float64)
	// Finish completes the document and reports any write failure
	Finish() error
}
