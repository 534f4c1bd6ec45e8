package layout

// Page geometry for 4x6 inch label stock, in points
const (
	PageWidth  = 4 * 72.0
	PageHeight = 6 * 72.0
	Margin     = 10.0

	ContentWidth = PageWidth - 2*Margin
	// PrintableBottom is the lowest y any content may reach
	PrintableBottom = PageHeight - Margin
)

// Typography and spacing, in points
const (
	BaseFontSize      = 8.0
	VariantFontSize   = 7.0
	LineHeight        = 14.0
	SectionLineHeight = LineHeight * 0.8
	SectionSpacing    = 16.0

	// ValueGap separates right-aligned detail labels from their values
	ValueGap = 4.0
	// ColumnGap separates the title column from the quantity column
	ColumnGap = 8.0

	HeaderRuleGap   = 2.0
	HeaderRuleWidth = 1.0
	SeparatorWidth  = 0.5
	RowPadding      = 3.0
	VariantGap      = 1.0
	VariantIndent   = 6.0
)

// Ellipsis terminates truncated text
const Ellipsis = "…"
