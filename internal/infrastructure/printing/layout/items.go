package layout

import (
	"strconv"

	"github.com/shipprint/backend/internal/domain/shipping"
)

// Column headers of the items table
const (
	ColumnItems    = "ITEMS"
	ColumnQuantity = "QTY"
)

// columns holds the measured widths of the items table for one document
type columns struct {
	titleWidth    float64
	quantityRight float64
}

func (e *Engine) measureColumns(items []shipping.LineItem) columns {
	m := e.measurer
	qtyWidth := m.MeasureText(ColumnQuantity, FontBold, BaseFontSize)
	for _, item := range items {
		qtyWidth = maxFloat(qtyWidth, m.MeasureText(strconv.Itoa(item.Quantity), FontRegular, BaseFontSize))
	}
	return columns{
		titleWidth:    ContentWidth - qtyWidth - ColumnGap,
		quantityRight: PageWidth - Margin,
	}
}

// headerHeight is the vertical space taken by the column header and its rule
func (e *Engine) headerHeight() float64 {
	return e.measurer.LineHeight(FontBold, BaseFontSize) + HeaderRuleGap + HeaderRuleWidth
}

// rowHeight is the height of one item row including its padding
func (e *Engine) rowHeight(item shipping.LineItem) float64 {
	h := RowPadding + e.measurer.LineHeight(FontRegular, BaseFontSize) + RowPadding
	if item.VariantTitle != "" {
		h += VariantGap + e.measurer.LineHeight(FontRegular, VariantFontSize)
	}
	return h
}

// fits reports whether a block of height h starting at y stays inside the printable area
func fits(y, h float64) bool {
	return y+h <= PrintableBottom
}

// renderItems draws the items table starting at y, breaking pages as needed.
// It returns the number of rows drawn.
func (e *Engine) renderItems(p *pager, items []shipping.LineItem, y float64) int {
	cols := e.measureColumns(items)
	headerH := e.headerHeight()

	// keep the column header together with the first row
	firstH := headerH
	if len(items) > 0 {
		firstH += e.rowHeight(items[0])
	}
	if !fits(y, firstH) {
		p.newPage()
		y = Margin
	}
	y = e.renderColumnHeader(p.sink, cols, y)
	rowsOnPage := 0

	for i, item := range items {
		h := e.rowHeight(item)
		if rowsOnPage > 0 && !fits(y, h) {
			p.newPage()
			y = e.renderColumnHeader(p.sink, cols, Margin)
			rowsOnPage = 0
		}

		e.renderRow(p.sink, cols, item, y)
		y += h
		rowsOnPage++

		if i < len(items)-1 && fits(y, e.rowHeight(items[i+1])) {
			p.sink.DrawLine(Margin, y, PageWidth-Margin, y, SeparatorWidth)
		}
	}
	return len(items)
}

func (e *Engine) renderColumnHeader(sink DocumentSink, cols columns, y float64) float64 {
	m := e.measurer
	sink.DrawText(ColumnItems, Margin, y, FontBold, BaseFontSize)
	qtyWidth := m.MeasureText(ColumnQuantity, FontBold, BaseFontSize)
	sink.DrawText(ColumnQuantity, cols.quantityRight-qtyWidth, y, FontBold, BaseFontSize)

	ruleY := y + m.LineHeight(FontBold, BaseFontSize) + HeaderRuleGap
	sink.DrawLine(Margin, ruleY, PageWidth-Margin, ruleY, HeaderRuleWidth)
	return ruleY + HeaderRuleWidth
}

func (e *Engine) renderRow(sink DocumentSink, cols columns, item shipping.LineItem, y float64) {
	m := e.measurer
	y += RowPadding

	title := Ellipsize(m, item.Title, FontRegular, BaseFontSize, cols.titleWidth)
	sink.DrawText(title, Margin, y, FontRegular, BaseFontSize)

	qty := strconv.Itoa(item.Quantity)
	sink.DrawText(qty, cols.quantityRight-m.MeasureText(qty, FontRegular, BaseFontSize), y, FontRegular, BaseFontSize)

	if item.VariantTitle != "" {
		y += m.LineHeight(FontRegular, BaseFontSize) + VariantGap
		variant := Ellipsize(m, item.VariantTitle, FontRegular, VariantFontSize, cols.titleWidth-VariantIndent)
		sink.DrawText(variant, Margin+VariantIndent, y, FontRegular, VariantFontSize)
	}
}
