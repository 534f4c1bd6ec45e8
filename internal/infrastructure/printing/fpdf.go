package printing

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
)

// Core Helvetica vertical metrics, in thousandths of the font size
const (
	helveticaAscent    = 718
	helveticaLineSpace = 1156
)

// fontStyle maps a layout font to an fpdf core font family and style
func fontStyle(font layout.Font) (family, style string) {
	if font == layout.FontBold {
		return "Helvetica", "B"
	}
	return "Helvetica", ""
}

// EncodeWinAnsi transcodes text to Windows-1252, the encoding of the PDF core fonts.
// Runes outside the code page become '?'.
func EncodeWinAnsi(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

func newFPDF(paper printing.PaperSize) *fpdf.Fpdf {
	width, height := paper.Points()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// FPDFMeasurer measures text with the core Helvetica metrics bundled in fpdf.
// It is not safe for concurrent use.
type FPDFMeasurer struct {
	pdf *fpdf.Fpdf
}

// NewFPDFMeasurer creates a measurer
func NewFPDFMeasurer() *FPDFMeasurer {
	return &FPDFMeasurer{pdf: newFPDF(printing.PaperSizeLabel4x6)}
}

// MeasureText implements layout.TextMeasurer
func (m *FPDFMeasurer) MeasureText(text string, font layout.Font, size float64) float64 {
	family, style := fontStyle(font)
	m.pdf.SetFont(family, style, size)
	return m.pdf.GetStringWidth(EncodeWinAnsi(text))
}

// LineHeight implements layout.TextMeasurer
func (m *FPDFMeasurer) LineHeight(_ layout.Font, size float64) float64 {
	return size * helveticaLineSpace / 1000
}

// FPDFSink draws a document directly to PDF and writes it on Finish
type FPDFSink struct {
	pdf *fpdf.Fpdf
	w   io.Writer
}

// NewFPDFSink creates a sink that writes the finished PDF to w.
// A fixed creation date keeps output reproducible for a given order.
func NewFPDFSink(w io.Writer, title string, created time.Time) *FPDFSink {
	pdf := newFPDF(printing.PaperSizeLabel4x6)
	pdf.SetTitle(title, true)
	pdf.SetCreator("shipprint", false)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	return &FPDFSink{pdf: pdf, w: w}
}

// NewPage implements layout.DocumentSink
func (s *FPDFSink) NewPage() {
	s.pdf.AddPage()
}

// DrawText implements layout.DocumentSink. y is the top of the line box.
func (s *FPDFSink) DrawText(text string, x, y float64, font layout.Font, size float64) {
	if text == "" {
		return
	}
	family, style := fontStyle(font)
	s.pdf.SetFont(family, style, size)
	s.pdf.Text(x, y+size*helveticaAscent/1000, EncodeWinAnsi(text))
}

// DrawLine implements layout.DocumentSink
func (s *FPDFSink) DrawLine(x1, y1, x2, y2, width float64) {
	s.pdf.SetLineWidth(width)
	s.pdf.Line(x1, y1, x2, y2)
}

// Finish implements layout.DocumentSink
func (s *FPDFSink) Finish() error {
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	if err := s.pdf.Output(s.w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PageCount returns the number of pages started so far
func (s *FPDFSink) PageCount() int {
	return s.pdf.PageCount()
}

var (
	_ layout.TextMeasurer = (*FPDFMeasurer)(nil)
	_ layout.DocumentSink = (*FPDFSink)(nil)
)
