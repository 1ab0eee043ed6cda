package report

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format selects the report output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatHTML}
}

// ParseFormat maps a flag value to a Format. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", goerrors.New(
			fmt.Sprintf("unknown format %q (want markdown, json or html)", s),
			goerrors.CategoryBadInput,
		).WithTextCode("UNKNOWN_FORMAT")
	}
}

// Ext returns the file extension for reports in this format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

var printer = message.NewPrinter(language.English)

// formatGas groups thousands: 652421 -> "652,421".
func formatGas(n int) string {
	return printer.Sprintf("%d", n)
}

// formatDelta renders a signed, grouped difference.
func formatDelta(d int) string {
	switch {
	case d > 0:
		return "+" + formatGas(d)
	case d < 0:
		return "-" + formatGas(-d)
	default:
		return "0"
	}
}

// formatChange renders d relative to base as a signed percentage.
func formatChange(d, base int) string {
	if base == 0 {
		return "-"
	}

	return fmt.Sprintf("%+.2f%%", float64(d)/float64(base)*100)
}
