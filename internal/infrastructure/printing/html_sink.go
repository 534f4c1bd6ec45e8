package printing

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
)

// ErrEmptyDocument is returned when a sink is finished without any page
var ErrEmptyDocument = errors.New("document has no pages")

const htmlPageStyle = `<style>
@page { size: 4in 6in; margin: 0; }
html, body { margin: 0; padding: 0; }
.page { position: relative; width: 288pt; height: 432pt; overflow: hidden; page-break-after: always; }
.page:last-child { page-break-after: auto; }
.t { position: absolute; white-space: pre; font-family: Helvetica, Arial, sans-serif; line-height: 1.156; }
.b { font-weight: bold; }
.l { position: absolute; border-top-style: solid; border-top-color: #000; height: 0; }
</style>`

// HTMLSink lays a document out as absolutely positioned HTML, one element per
// drawing operation, for rendering by a PDFRenderer
type HTMLSink struct {
	title string
	pages []*strings.Builder
	doc   string
}

// NewHTMLSink creates an HTML sink
func NewHTMLSink(title string) *HTMLSink {
	return &HTMLSink{title: title}
}

// NewPage implements layout.DocumentSink
func (s *HTMLSink) NewPage() {
	s.pages = append(s.pages, &strings.Builder{})
}

func (s *HTMLSink) current() *strings.Builder {
	if len(s.pages) == 0 {
		s.NewPage()
	}
	return s.pages[len(s.pages)-1]
}

// DrawText implements layout.DocumentSink
func (s *HTMLSink) DrawText(text string, x, y float64, font layout.Font, size float64) {
	if text == "" {
		return
	}
	class := "t"
	if font == layout.FontBold {
		class = "t b"
	}
	fmt.Fprintf(s.current(), `<div class="%s" style="left:%.2fpt;top:%.2fpt;font-size:%.2fpt">%s</div>`,
		class, x, y, size, html.EscapeString(text))
}

// DrawLine implements layout.DocumentSink. Only horizontal rules are supported.
func (s *HTMLSink) DrawLine(x1, y1, x2, _ float64, width float64) {
	left, right := x1, x2
	if right < left {
		left, right = right, left
	}
	fmt.Fprintf(s.current(), `<div class="l" style="left:%.2fpt;top:%.2fpt;width:%.2fpt;border-top-width:%.2fpt"></div>`,
		left, y1-width/2, right-left, width)
}

// Finish implements layout.DocumentSink
func (s *HTMLSink) Finish() error {
	if len(s.pages) == 0 {
		return ErrEmptyDocument
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\">")
	if s.title != "" {
		b.WriteString("<title>")
		b.WriteString(html.EscapeString(s.title))
		b.WriteString("</title>")
	}
	b.WriteString(htmlPageStyle)
	b.WriteString("</head><body>")
	for _, page := range s.pages {
		b.WriteString(`<div class="page">`)
		b.WriteString(page.String())
		b.WriteString("</div>")
	}
	b.WriteString("</body></html>")
	s.doc = b.String()
	return nil
}

// HTML returns the finished document
func (s *HTMLSink) HTML() string {
	return s.doc
}

// PageCount returns the number of pages started so far
func (s *HTMLSink) PageCount() int {
	return len(s.pages)
}

var _ layout.DocumentSink = (*HTMLSink)(nil)
