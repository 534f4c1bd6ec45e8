package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/domain/shipping"
	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
)

type fakePDFRenderer struct {
	req    *RenderRequest
	pages  int
	err    error
	closed bool
}

func (f *fakePDFRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &RenderResult{PDFData: []byte("%PDF-fake"), PageCount: f.pages}, nil
}

func (f *fakePDFRenderer) Close() error {
	f.closed = true
	return nil
}

func testOrder(items int) *shipping.Order {
	placed := time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC)
	order := &shipping.Order{
		ID:          "order_123abc456def",
		OrderNumber: "#1068",
		PlacedAt:    &placed,
		ToAddress: shipping.Address{
			Name: "John Doe", Street1: "123 Market Street", City: "San Francisco",
			State: "CA", Zip: "94103", Country: "US",
		},
	}
	for i := 0; i < items; i++ {
		order.LineItems = append(order.LineItems, shipping.LineItem{
			ID: fmt.Sprintf("item_%d", i), Title: fmt.Sprintf("Item %d", i), Quantity: 1,
		})
	}
	return order
}

var testBusinessInfo = layout.BusinessInfo{Name: "Acme Tools", Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701"}

func TestPackingSlipRenderer_FPDF(t *testing.T) {
	r := NewPackingSlipRenderer(PackingSlipRendererConfig{Business: testBusinessInfo})

	pdf, err := r.Render(context.Background(), testOrder(3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Equal(t, 1, estimatePageCount(pdf))

	// long orders spill onto additional pages
	pdf, err = r.Render(context.Background(), testOrder(60))
	require.NoError(t, err)
	assert.Greater(t, estimatePageCount(pdf), 1)

	assert.NoError(t, r.Close())
}

func TestPackingSlipRenderer_FPDFReproducible(t *testing.T) {
	r := NewPackingSlipRenderer(PackingSlipRendererConfig{Business: testBusinessInfo})

	first, err := r.Render(context.Background(), testOrder(3))
	require.NoError(t, err)
	second, err := r.Render(context.Background(), testOrder(3))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPackingSlipRenderer_HTMLBackend(t *testing.T) {
	fake := &fakePDFRenderer{pages: 1}
	r := NewPackingSlipRenderer(PackingSlipRendererConfig{
		Business:     testBusinessInfo,
		HTMLRenderer: fake,
		Timeout:      5 * time.Second,
	})

	pdf, err := r.Render(context.Background(), testOrder(3))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)

	require.NotNil(t, fake.req)
	assert.Equal(t, printing.PaperSizeLabel4x6, fake.req.PaperSize)
	assert.Equal(t, "Packing Slip for Order #1068", fake.req.Title)
	assert.Equal(t, 5*time.Second, fake.req.Timeout)
	assert.Equal(t, printing.Margins{}, fake.req.Margins, "layout positions include the page margin")
	assert.Contains(t, fake.req.HTML, "Packing Slip for Order #1068")
	assert.Contains(t, fake.req.HTML, "Item 2")

	require.NoError(t, r.Close())
	assert.True(t, fake.closed)
}

func TestPackingSlipRenderer_HTMLBackendError(t *testing.T) {
	renderErr := NewRenderError(ErrCodeRenderTimeout, "timed out", nil)
	r := NewPackingSlipRenderer(PackingSlipRendererConfig{
		Business:     testBusinessInfo,
		HTMLRenderer: &fakePDFRenderer{err: renderErr},
	})

	_, err := r.Render(context.Background(), testOrder(1))
	assert.ErrorIs(t, err, printing.ErrRender)
	assert.True(t, errors.Is(err, renderErr))
}

func TestPackingSlipRenderer_Acquire(t *testing.T) {
	r := NewPackingSlipRenderer(PackingSlipRendererConfig{Business: testBusinessInfo})

	pdf, err := r.Acquire(context.Background(), testOrder(1))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	_, err = r.Acquire(context.Background(), &shipping.Label{ID: "txn_1"})
	assert.ErrorIs(t, err, printing.ErrRender)

	_, err = r.Render(context.Background(), nil)
	assert.ErrorIs(t, err, printing.ErrRender)
}

func TestNewPDFRendererFor(t *testing.T) {
	r, err := NewPDFRendererFor(BackendFPDF, time.Second, nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	_, err = NewPDFRendererFor(Backend("latex"), time.Second, nil)
	assert.Error(t, err)

	assert.True(t, BackendChromedp.IsValid())
	assert.False(t, Backend("latex").IsValid())
}
