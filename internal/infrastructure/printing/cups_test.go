package printing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipprint/backend/internal/domain/printing"
)

func TestParseLPJobID(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"request id is Zebra_ZP450-42 (1 file(s))\n", "Zebra_ZP450-42"},
		{"request id is office-7", "office-7"},
		{"", ""},
		{"lp: unexpected output", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLPJobID(tt.output))
	}
}

func TestNewLPPrinter_Validation(t *testing.T) {
	_, err := NewLPPrinter(nil)
	assert.Error(t, err)

	_, err = NewLPPrinter(&LPConfig{Printer: "  "})
	assert.Error(t, err)

	_, err = NewLPPrinter(&LPConfig{Printer: "Zebra", BinaryPath: "/nonexistent/lp"})
	assert.Error(t, err)
}

func TestLPPrinter_Submit(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	script := writeScript(t, "lp", `echo "$@" > '`+argsFile+`'
echo "request id is $2-17 (1 file(s))"
echo "lp: printer is low on labels" >&2
`)
	p, err := NewLPPrinter(&LPConfig{Printer: "Zebra", BinaryPath: script})
	require.NoError(t, err)
	assert.Equal(t, "Zebra", p.Printer())

	jobID, err := p.Submit(context.Background(), "/tmp/label-2026-02-02-1Z.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Zebra-17", jobID)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-d Zebra /tmp/label-2026-02-02-1Z.pdf\n", string(args))
}

func TestLPPrinter_SubmitFailure(t *testing.T) {
	script := writeScript(t, "lp", "echo 'lp: The printer or class does not exist.' >&2\nexit 1\n")
	p, err := NewLPPrinter(&LPConfig{Printer: "Missing", BinaryPath: script})
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), "/tmp/doc.pdf")
	require.Error(t, err)

	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "Missing", subErr.Printer)
	assert.Equal(t, "/tmp/doc.pdf", subErr.Path)
	assert.Equal(t, "lp: The printer or class does not exist.", subErr.Stderr)
	assert.ErrorIs(t, err, printing.ErrSubmission)
	assert.Contains(t, err.Error(), `printer "Missing"`)
}
