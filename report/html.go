package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/weiihann/gasreport/gas"
)

// newMarkdownEngine returns a goldmark engine with GFM tables enabled.
func newMarkdownEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// ToHTML converts a markdown report into a standalone HTML page.
func ToHTML(w io.Writer, title string, markdown []byte) error {
	var body bytes.Buffer
	if err := newMarkdownEngine().Convert(markdown, &body); err != nil {
		return fmt.Errorf("markdown convert: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.Bytes())

	return err
}

// GenerateHTML renders the markdown report and writes it as HTML to w.
func GenerateHTML(w io.Writer, r *gas.Report, v gas.Variant, now time.Time) error {
	md, err := Markdown(r, v, now)
	if err != nil {
		return err
	}

	return ToHTML(w, v.Title, []byte(md))
}
