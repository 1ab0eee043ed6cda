package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weiihann/gasreport/gas"
)

// Side is one variant's report within a comparison.
type Side struct {
	Variant gas.Variant
	Report  *gas.Report
}

// FunctionDelta compares the average gas of one function. A zero Base or
// Candidate with the matching Has flag unset means the function is
// missing on that side.
type FunctionDelta struct {
	Name         string `json:"name"`
	Base         int    `json:"base"`
	Candidate    int    `json:"candidate"`
	HasBase      bool   `json:"has_base"`
	HasCandidate bool   `json:"has_candidate"`
}

// Delta returns Candidate - Base. It is zero unless both sides exist.
func (d FunctionDelta) Delta() int {
	if !d.HasBase || !d.HasCandidate {
		return 0
	}

	return d.Candidate - d.Base
}

// Comparison holds the differences between two variant reports.
type Comparison struct {
	Base      Side
	Candidate Side
	Functions []FunctionDelta
}

// Compare pairs the functions of base and candidate by name. Rows follow
// the baseline's ascending average, then candidate-only functions in
// their ascending average order.
func Compare(base, candidate Side) (*Comparison, error) {
	if base.Report == nil || candidate.Report == nil {
		return nil, fmt.Errorf("comparison needs two reports")
	}

	c := &Comparison{Base: base, Candidate: candidate}
	seen := make(map[string]bool)

	for _, fn := range base.Report.Ranked() {
		if seen[fn.Name] {
			continue
		}

		seen[fn.Name] = true

		row := FunctionDelta{Name: fn.Name, Base: fn.Avg, HasBase: true}
		if other, ok := candidate.Report.Function(fn.Name); ok {
			row.Candidate = other.Avg
			row.HasCandidate = true
		}

		c.Functions = append(c.Functions, row)
	}

	for _, fn := range candidate.Report.Ranked() {
		if seen[fn.Name] {
			continue
		}

		seen[fn.Name] = true
		c.Functions = append(c.Functions, FunctionDelta{
			Name: fn.Name, Candidate: fn.Avg, HasCandidate: true,
		})
	}

	return c, nil
}

// Summary counts functions that got cheaper, more expensive or stayed
// the same. Functions present on one side only are not counted.
func (c *Comparison) Summary() (cheaper, costlier, unchanged int) {
	for _, row := range c.Functions {
		if !row.HasBase || !row.HasCandidate {
			continue
		}

		switch d := row.Delta(); {
		case d < 0:
			cheaper++
		case d > 0:
			costlier++
		default:
			unchanged++
		}
	}

	return cheaper, costlier, unchanged
}

// Title returns the comparison heading.
func (c *Comparison) Title() string {
	return fmt.Sprintf("Gas Comparison: %s vs %s",
		c.Base.Variant.Name, c.Candidate.Variant.Name)
}

// Markdown renders the comparison.
func (c *Comparison) Markdown(now time.Time) string {
	base, cand := c.Base, c.Candidate

	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", c.Title())
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format(DateLayout))
	fmt.Fprintf(&b, "Baseline `%s` (%s) against candidate `%s` (%s).\n\n",
		base.Variant.Name, base.Variant.TestContract,
		cand.Variant.Name, cand.Variant.TestContract)

	fmt.Fprintln(&b, "## 1. Deployment")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "| Metric | %s | %s | Delta | Change |\n",
		base.Variant.Name, cand.Variant.Name)
	fmt.Fprintln(&b, "|--------|-----|-----|-------|--------|")
	deploymentRow(&b, "Deployment cost (gas)",
		base.Report.DeploymentCost, cand.Report.DeploymentCost)
	deploymentRow(&b, "Contract size (bytes)",
		base.Report.DeploymentSize, cand.Report.DeploymentSize)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## 2. Average Gas per Function")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "| Function | %s | %s | Delta | Change |\n",
		base.Variant.Name, cand.Variant.Name)
	fmt.Fprintln(&b, "|----------|-----|-----|-------|--------|")

	for _, row := range c.Functions {
		baseCol, candCol, delta, change := "-", "-", "-", "-"

		if row.HasBase {
			baseCol = formatGas(row.Base)
		}

		if row.HasCandidate {
			candCol = formatGas(row.Candidate)
		}

		if row.HasBase && row.HasCandidate {
			delta = formatDelta(row.Delta())
			change = formatChange(row.Delta(), row.Base)
		}

		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Name, baseCol, candCol, delta, change)
	}

	fmt.Fprintln(&b)

	cheaper, costlier, unchanged := c.Summary()

	fmt.Fprintln(&b, "## 3. Summary")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "- Cheaper: %d\n", cheaper)
	fmt.Fprintf(&b, "- More expensive: %d\n", costlier)
	fmt.Fprintf(&b, "- Unchanged: %d\n", unchanged)

	return b.String()
}

func deploymentRow(b *strings.Builder, label string, base, cand int) {
	d := cand - base
	fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
		label, formatGas(base), formatGas(cand),
		formatDelta(d), formatChange(d, base))
}

type comparisonDocument struct {
	Base      Document        `json:"base"`
	Candidate Document        `json:"candidate"`
	Functions []FunctionDelta `json:"functions"`
}

// RenderComparison writes the comparison to w in the given format.
func RenderComparison(w io.Writer, format Format, c *Comparison, now time.Time) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, c.Markdown(now))

		return err
	case FormatHTML:
		return ToHTML(w, c.Title(), []byte(c.Markdown(now)))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(comparisonDocument{
			Base:      document(c.Base, now),
			Candidate: document(c.Candidate, now),
			Functions: c.Functions,
		})
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
