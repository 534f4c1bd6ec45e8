// Package printing turns shipping records into printable documents and hands
// them to the print spooler.
//
// This package contains:
//   - FPDFMeasurer and FPDFSink, drawing layout output directly to PDF with core fonts
//   - HTMLSink plus the ChromedpRenderer and WkhtmltopdfRenderer PDFRenderer implementations
//   - PackingSlipRenderer, which ties the layout engine to one of the backends
//   - FileSpool, the on-disk staging area for documents awaiting submission
//   - LPPrinter, which submits files to a CUPS queue with lp
//
// Example usage:
//
//	renderer := NewPackingSlipRenderer(PackingSlipRendererConfig{
//	    Business: layout.BusinessInfo{Name: "Acme Tools", City: "Springfield", State: "IL", Zip: "62701"},
//	})
//	pdf, err := renderer.Render(ctx, order)
//	if err != nil {
//	    return err
//	}
//	path, err := spool.Write(ctx, printing.KeyFor(order), pdf)
package printing
