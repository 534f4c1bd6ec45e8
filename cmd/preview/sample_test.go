package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/shipprint/backend/internal/application/printing"
	domain "github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/infrastructure/printing"
	"github.com/shipprint/backend/internal/infrastructure/scheduler"
)

func TestSampleOrder(t *testing.T) {
	order := sampleOrder()

	assert.Len(t, order.LineItems, 12)
	assert.Equal(t, 29, order.TotalQuantity())
	assert.Equal(t, "packing-slip-2026-02-02-_1068", domain.KeyFor(order))
}

func TestSamplePreviewWritesPDF(t *testing.T) {
	out, err := printing.NewFileSpool(&printing.FileSpoolConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	pipeline, err := app.NewPipeline(app.PipelineConfig{DryRun: true, Output: out})
	require.NoError(t, err)

	renderer := printing.NewPackingSlipRenderer(printing.PackingSlipRendererConfig{})
	svc, err := app.NewPrintService(app.ServiceConfig{
		Pipeline: pipeline,
		Window:   scheduler.DefaultWindowConfig(),
		Orders:   staticOrders{sampleOrder()},
		Slips:    renderer,
	})
	require.NoError(t, err)

	report := svc.RunPackingSlips(context.Background(), domain.TimeWindow{})
	require.Equal(t, 1, report.Success, "results: %+v", report.Results)

	data, err := os.ReadFile(out.Path("packing-slip-2026-02-02-_1068"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
