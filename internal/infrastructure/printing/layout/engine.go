package layout

import (
	"errors"
	"fmt"

	"github.com/shipprint/backend/internal/domain/shipping"
)

// ErrNilOrder is returned when rendering without an order
var ErrNilOrder = errors.New("layout: order is nil")

// BusinessInfo is the sender identity printed on every slip
type BusinessInfo struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string
}

// CityLine formats "City, ST Zip"
func (b BusinessInfo) CityLine() string {
	return b.City + ", " + b.State + " " + b.Zip
}

// Layout describes a rendered document
type Layout struct {
	Pages      int
	Rows       int
	TotalItems int
}

// Engine lays out packing slips. It holds no per-document state and is safe to reuse.
type Engine struct {
	measurer TextMeasurer
	business BusinessInfo
}

// NewEngine creates a layout engine
func NewEngine(measurer TextMeasurer, business BusinessInfo) *Engine {
	return &Engine{
		measurer: measurer,
		business: business,
	}
}

// pager tracks the page currently being drawn
type pager struct {
	sink  DocumentSink
	pages int
}

func (p *pager) newPage() {
	p.sink.NewPage()
	p.pages++
}

// Render draws the packing slip for order into sink and finishes the document.
// A sink failure aborts the whole document.
func (e *Engine) Render(order *shipping.Order, sink DocumentSink) (*Layout, error) {
	if order == nil {
		return nil, ErrNilOrder
	}

	p := &pager{sink: sink}
	p.newPage()

	y := e.renderHeader(sink, order, Margin)
	rows := e.renderItems(p, order.LineItems, y)

	if err := sink.Finish(); err != nil {
		return nil, fmt.Errorf("finish document: %w", err)
	}

	return &Layout{
		Pages:      p.pages,
		Rows:       rows,
		TotalItems: order.TotalQuantity(),
	}, nil
}
