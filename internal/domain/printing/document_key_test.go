package printing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shipprint/backend/internal/domain/shipping"
)

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#1068/A", "_1068_A"},
		{"1068", "1068"},
		{"order_abc-123", "order_abc-123"},
		{"a b.c", "a_b_c"},
		{"ünï", "_n_"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeIdentifier(tt.in))
		})
	}
}

func TestDocumentKey(t *testing.T) {
	placed := time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC)

	t.Run("date prefixed and sanitized", func(t *testing.T) {
		assert.Equal(t, "packing-slip-2026-02-02-_1068_A", DocumentKey(DocKindPackingSlip, &placed, "#1068/A"))
	})

	t.Run("date is taken in UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*3600)
		local := time.Date(2026, 2, 3, 5, 0, 0, 0, loc) // 2026-02-02T19:00Z
		assert.Equal(t, "label-2026-02-02-1Z", DocumentKey(DocKindLabel, &local, "1Z"))
	})

	t.Run("missing timestamp", func(t *testing.T) {
		assert.Equal(t, "label-unknown-date-abc", DocumentKey(DocKindLabel, nil, "abc"))
	})
}

func TestKeyFor(t *testing.T) {
	placed := time.Date(2026, 2, 2, 14, 30, 0, 0, time.UTC)
	order := &shipping.Order{ID: "obj", OrderNumber: "#1068", PlacedAt: &placed}
	assert.Equal(t, "packing-slip-2026-02-02-_1068", KeyFor(order))
	assert.Equal(t, "packing-slip-2026-02-02-_1068.pdf", FileName(KeyFor(order)))

	label := &shipping.Label{ID: "txn_1"}
	assert.Equal(t, "label-unknown-date-txn_1", KeyFor(label))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("packing-slip-2026-02-02-_1068"))
	assert.ErrorIs(t, ValidateKey(""), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("../etc/passwd"), ErrInvalidKey)
}

func TestTimeWindow(t *testing.T) {
	start := time.Date(2026, 2, 2, 14, 0, 0, 0, time.UTC)
	w := TimeWindow{Start: start, End: start.Add(30 * time.Minute)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(29*time.Minute)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(start.Add(-time.Second)))
	assert.Equal(t, 30*time.Minute, w.Duration())
	assert.Equal(t, "[2026-02-02T14:00:00Z, 2026-02-02T14:30:00Z)", w.String())
}

func TestPaperSize(t *testing.T) {
	w, h := PaperSizeLabel4x6.Points()
	assert.Equal(t, 288.0, w)
	assert.Equal(t, 432.0, h)

	wi, hi := PaperSizeLabel4x6.Inches()
	assert.Equal(t, 4.0, wi)
	assert.Equal(t, 6.0, hi)
	assert.True(t, PaperSizeLabel4x6.IsValid())
	assert.False(t, PaperSize("A4").IsValid())
}
