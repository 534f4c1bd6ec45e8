package printing

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/domain/shipping"
	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
)

// Backend selects how packing slips are turned into PDF
type Backend string

const (
	BackendFPDF        Backend = "fpdf"
	BackendChromedp    Backend = "chromedp"
	BackendWkhtmltopdf Backend = "wkhtmltopdf"
)

// IsValid checks if the Backend is a valid value
func (b Backend) IsValid() bool {
	switch b {
	case BackendFPDF, BackendChromedp, BackendWkhtmltopdf:
		return true
	}
	return false
}

// PackingSlipRenderer renders orders into packing slip PDFs.
// With a nil PDFRenderer documents are drawn directly with fpdf; otherwise the
// layout is emitted as HTML and converted by the renderer. Pagination is decided
// by the same measurer either way.
type PackingSlipRenderer struct {
	engine   *layout.Engine
	html     PDFRenderer
	logger   *zap.Logger
	deadline time.Duration
}

// PackingSlipRendererConfig configures a PackingSlipRenderer
type PackingSlipRendererConfig struct {
	Business layout.BusinessInfo
	// Measurer defaults to the fpdf Helvetica metrics
	Measurer layout.TextMeasurer
	// HTMLRenderer is used instead of direct PDF output when set
	HTMLRenderer PDFRenderer
	// Timeout bounds HTML to PDF conversion (0 uses the renderer default)
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewPackingSlipRenderer creates a packing slip renderer
func NewPackingSlipRenderer(cfg PackingSlipRendererConfig) *PackingSlipRenderer {
	measurer := cfg.Measurer
	if measurer == nil {
		measurer = NewFPDFMeasurer()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackingSlipRenderer{
		engine:   layout.NewEngine(measurer, cfg.Business),
		html:     cfg.HTMLRenderer,
		logger:   logger,
		deadline: cfg.Timeout,
	}
}

// Render produces the packing slip PDF for an order
func (r *PackingSlipRenderer) Render(ctx context.Context, order *shipping.Order) ([]byte, error) {
	if order == nil {
		return nil, NewRenderError(ErrCodeLayoutFailed, "order is nil", layout.ErrNilOrder)
	}
	title := layout.TitleFor(order)

	if r.html == nil {
		var buf bytes.Buffer
		created := time.Unix(0, 0).UTC()
		if order.PlacedAt != nil {
			created = order.PlacedAt.UTC()
		}
		result, err := r.engine.Render(order, NewFPDFSink(&buf, title, created))
		if err != nil {
			return nil, NewRenderError(ErrCodeLayoutFailed, "failed to lay out packing slip", err)
		}
		r.logger.Debug("packing slip rendered",
			zap.String("order", order.Identifier()),
			zap.Int("pages", result.Pages),
			zap.Int("total_items", result.TotalItems))
		return buf.Bytes(), nil
	}

	sink := NewHTMLSink(title)
	result, err := r.engine.Render(order, sink)
	if err != nil {
		return nil, NewRenderError(ErrCodeLayoutFailed, "failed to lay out packing slip", err)
	}

	out, err := r.html.Render(ctx, &RenderRequest{
		HTML:        sink.HTML(),
		PaperSize:   printing.PaperSizeLabel4x6,
		Orientation: printing.OrientationPortrait,
		Title:       title,
		Timeout:     r.deadline,
	})
	if err != nil {
		return nil, err
	}
	if out.PageCount != result.Pages {
		r.logger.Warn("HTML renderer produced a different page count",
			zap.String("order", order.Identifier()),
			zap.Int("expected", result.Pages),
			zap.Int("actual", out.PageCount))
	}
	return out.PDFData, nil
}

// Acquire renders the document for an order record
func (r *PackingSlipRenderer) Acquire(ctx context.Context, rec shipping.Record) ([]byte, error) {
	order, ok := rec.(*shipping.Order)
	if !ok {
		return nil, NewRenderError(ErrCodeLayoutFailed,
			fmt.Sprintf("packing slips are rendered for orders, got %s", rec.Kind()), nil)
	}
	return r.Render(ctx, order)
}

// Close releases the HTML renderer, if any
func (r *PackingSlipRenderer) Close() error {
	if r.html != nil {
		return r.html.Close()
	}
	return nil
}

// NewPDFRendererFor returns the HTML to PDF renderer a backend needs.
// The fpdf backend needs none and yields nil.
func NewPDFRendererFor(backend Backend, timeout time.Duration, logger *zap.Logger) (PDFRenderer, error) {
	switch backend {
	case BackendFPDF, "":
		return nil, nil
	case BackendChromedp:
		return NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: timeout,
			NoSandbox:      true,
			Logger:         logger,
		}), nil
	case BackendWkhtmltopdf:
		r, err := NewWkhtmltopdfRenderer(&WkhtmltopdfConfig{
			DefaultTimeout: timeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", backend)
	}
}
