// Package layout maps a packing slip onto fixed-size 4x6 pages.
//
// The engine never touches a concrete PDF library. It measures text through a
// TextMeasurer and draws through a DocumentSink, which lets the page-break
// algorithm run against a fake measurer in tests and against fpdf or HTML
// sinks in production.
//
// Coordinates are points. The y axis grows downwards and text is placed by the
// top of its line box.
package layout
