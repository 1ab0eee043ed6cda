package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/weiihann/gasreport/gas"
)

// Document is the JSON form of a single-variant report.
type Document struct {
	Variant      string      `json:"variant"`
	Contract     string      `json:"contract"`
	TestContract string      `json:"test_contract"`
	Generated    string      `json:"generated"`
	Report       *gas.Report `json:"report"`
}

// GenerateJSON writes the report as an indented JSON document to w.
func GenerateJSON(w io.Writer, r *gas.Report, v gas.Variant, now time.Time) error {
	if r == nil {
		return fmt.Errorf("no report to render")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(document(Side{Variant: v, Report: r}, now))
}

func document(s Side, now time.Time) Document {
	ranked := *s.Report
	ranked.Functions = s.Report.Ranked()

	return Document{
		Variant:      s.Variant.Name,
		Contract:     s.Variant.Qualified(),
		TestContract: s.Variant.TestContract,
		Generated:    now.Format(DateLayout),
		Report:       &ranked,
	}
}
