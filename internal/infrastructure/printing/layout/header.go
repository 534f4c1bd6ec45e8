package layout

import (
	"strconv"

	"github.com/shipprint/backend/internal/domain/shipping"
)

// Detail labels of the order summary column
const (
	LabelShipTo     = "Ship To:"
	LabelOrderID    = "Order ID:"
	LabelOrderDate  = "Order Date:"
	LabelTotalItems = "Total Items:"
)

// OrderDateLayout formats dates the way en-US short dates read (M/D/YYYY)
const OrderDateLayout = "1/2/2006"

// TitleFor returns the slip title for an order
func TitleFor(order *shipping.Order) string {
	return "Packing Slip for Order " + order.DisplayNumber()
}

// renderHeader draws the title, business block and ship-to/details row.
// It returns the y position below the header.
func (e *Engine) renderHeader(sink DocumentSink, order *shipping.Order, y float64) float64 {
	m := e.measurer

	title := Ellipsize(m, TitleFor(order), FontBold, BaseFontSize, ContentWidth)
	titleWidth := m.MeasureText(title, FontBold, BaseFontSize)
	sink.DrawText(title, Margin+(ContentWidth-titleWidth)/2, y, FontBold, BaseFontSize)
	y += LineHeight + SectionSpacing

	y = e.renderBusiness(sink, y)

	return e.renderShipToAndDetails(sink, order, y)
}

// renderBusiness centers the sender block on the widest of its own lines
func (e *Engine) renderBusiness(sink DocumentSink, y float64) float64 {
	m := e.measurer
	cityLine := e.business.CityLine()

	blockWidth := maxFloat(
		m.MeasureText(e.business.Name, FontBold, BaseFontSize),
		m.MeasureText(e.business.Street, FontRegular, BaseFontSize),
		m.MeasureText(cityLine, FontRegular, BaseFontSize),
	)
	if blockWidth > ContentWidth {
		blockWidth = ContentWidth
	}
	x := (PageWidth - blockWidth) / 2

	sink.DrawText(Ellipsize(m, e.business.Name, FontBold, BaseFontSize, blockWidth), x, y, FontBold, BaseFontSize)
	y += SectionLineHeight
	sink.DrawText(Ellipsize(m, e.business.Street, FontRegular, BaseFontSize, blockWidth), x, y, FontRegular, BaseFontSize)
	y += SectionLineHeight
	sink.DrawText(Ellipsize(m, cityLine, FontRegular, BaseFontSize, blockWidth), x, y, FontRegular, BaseFontSize)

	return y + LineHeight + SectionSpacing
}

// renderShipToAndDetails draws the destination address on the left and the
// right-aligned order details on the right, starting at the same y
func (e *Engine) renderShipToAndDetails(sink DocumentSink, order *shipping.Order, y float64) float64 {
	m := e.measurer
	midPoint := PageWidth / 2
	leftWidth := midPoint - Margin - ValueGap

	// Ship To column
	leftY := y
	sink.DrawText(LabelShipTo, Margin, leftY, FontBold, BaseFontSize)
	leftY += LineHeight

	addr := order.ToAddress
	name := addr.Name
	if name == "" {
		name = shipping.NotAvailable
	}
	lines := []string{name}
	if addr.Company != "" {
		lines = append(lines, addr.Company)
	}
	lines = append(lines, addr.Street1)
	if addr.Street2 != "" {
		lines = append(lines, addr.Street2)
	}
	lines = append(lines, addr.CityLine(), addr.Country)

	for i, line := range lines {
		sink.DrawText(Ellipsize(m, line, FontRegular, BaseFontSize, leftWidth), Margin, leftY, FontRegular, BaseFontSize)
		if i < len(lines)-1 {
			leftY += SectionLineHeight
		}
	}
	shipToEnd := leftY + LineHeight

	// Details column: labels right-aligned against the widest label
	type detail struct{ label, value string }
	details := []detail{{LabelOrderID, orDefault(order.ID, shipping.NotAvailable)}}
	if order.PlacedAt != nil {
		details = append(details, detail{LabelOrderDate, order.PlacedAt.UTC().Format(OrderDateLayout)})
	}
	details = append(details, detail{LabelTotalItems, strconv.Itoa(order.TotalQuantity())})

	labelWidth := maxFloat(
		m.MeasureText(LabelOrderID, FontBold, BaseFontSize),
		m.MeasureText(LabelOrderDate, FontBold, BaseFontSize),
		m.MeasureText(LabelTotalItems, FontBold, BaseFontSize),
	)
	valueX := midPoint + labelWidth + ValueGap
	valueWidth := PageWidth - Margin - valueX

	rightY := y
	for _, d := range details {
		w := m.MeasureText(d.label, FontBold, BaseFontSize)
		sink.DrawText(d.label, midPoint+labelWidth-w, rightY, FontBold, BaseFontSize)
		sink.DrawText(Ellipsize(m, d.value, FontRegular, BaseFontSize, valueWidth), valueX, rightY, FontRegular, BaseFontSize)
		rightY += LineHeight
	}

	return maxFloat(shipToEnd, rightY) + SectionSpacing
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
