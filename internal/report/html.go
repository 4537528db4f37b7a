package report

import (
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// HTMLRenderer converts the Markdown report into a standalone HTML page
type HTMLRenderer struct {
	md MarkdownRenderer
}

// Render writes the report
func (hr *HTMLRenderer) Render(w io.Writer, r *Report) error {
	doc := parser.NewWithExtensions(parser.CommonExtensions).Parse([]byte(hr.md.document(r)))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: "A/B Test Report",
		Flags: html.CommonFlags | html.CompletePage,
	})

	_, err := w.Write(markdown.Render(doc, renderer))
	return err
}
