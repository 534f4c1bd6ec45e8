package printing

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hammer", "Hammer"},
		{"Café", "Caf\xe9"},
		{"Wrench…", "Wrench\x85"},
		{"扳手", "??"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeWinAnsi(tt.in))
	}
}

func TestFPDFMeasurer(t *testing.T) {
	m := NewFPDFMeasurer()

	regular := m.MeasureText("Packing Slip", layout.FontRegular, 8)
	bold := m.MeasureText("Packing Slip", layout.FontBold, 8)
	assert.Greater(t, regular, 0.0)
	assert.Greater(t, bold, regular)

	// widths scale linearly with the font size
	assert.InDelta(t, 2*regular, m.MeasureText("Packing Slip", layout.FontRegular, 16), 0.0001)
	assert.Zero(t, m.MeasureText("", layout.FontRegular, 8))

	// Helvetica "H" is 722 units wide
	assert.InDelta(t, 7.22, m.MeasureText("H", layout.FontRegular, 10), 0.0001)
	assert.InDelta(t, 9.248, m.LineHeight(layout.FontRegular, 8), 0.0001)
}

func TestFPDFSink_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	sink := NewFPDFSink(&buf, "Packing Slip for Order #1", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))

	sink.NewPage()
	sink.DrawText("Hello", 10, 10, layout.FontBold, 8)
	sink.DrawLine(10, 30, 278, 30, 1)
	sink.NewPage()
	sink.DrawText("Page two", 10, 10, layout.FontRegular, 8)

	require.NoError(t, sink.Finish())
	assert.Equal(t, 2, sink.PageCount())
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 2, estimatePageCount(buf.Bytes()))
}

func TestFPDFSink_WriterError(t *testing.T) {
	sink := NewFPDFSink(failingWriter{}, "slip", time.Unix(0, 0))
	sink.NewPage()
	sink.DrawText("Hello", 10, 10, layout.FontRegular, 8)

	assert.Error(t, sink.Finish())
}

func TestFPDFSink_DeterministicOutput(t *testing.T) {
	render := func() []byte {
		var buf bytes.Buffer
		sink := NewFPDFSink(&buf, "slip", time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC))
		sink.NewPage()
		sink.DrawText("Same", 10, 10, layout.FontRegular, 8)
		require.NoError(t, sink.Finish())
		return buf.Bytes()
	}

	assert.Equal(t, render(), render())
}
