// Package report renders gas reports as markdown, JSON or HTML.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weiihann/gasreport/gas"
)

// DateLayout is the layout of the "Generated" line.
const DateLayout = "2006-01-02"

var tips = []struct {
	title  string
	points []string
}{
	{"Use view/pure functions", []string{
		"Mark functions that only read state as `view` or `pure`",
		"External calls to view functions do not modify state and cost no gas off-chain",
	}},
	{"Optimize state variables", []string{
		"Keep the number and size of storage variables small",
		"Use compact types (`uint8` instead of `uint256`) when the value range allows and fields can be packed",
		"Avoid redundant storage writes",
	}},
	{"Batch operations", []string{
		"Merge many small operations into a single batched call",
		"Update data in bulk instead of one transaction per item",
	}},
	{"Initialize in the constructor", []string{
		"Set required data in the constructor to avoid follow-up setup transactions",
		"Use `immutable` and `constant` for values fixed at deployment",
	}},
	{"Choose function visibility carefully", []string{
		"Prefer `internal` or `private` over `public` where possible",
		"Internal calls are cheaper than external calls",
	}},
	{"Reduce loops and computation", []string{
		"Cut loop iterations and complexity",
		"Move computation off-chain or into the constructor",
		"Use short-circuit `&&` and `||` to skip unnecessary work",
	}},
	{"Keep events lean", []string{
		"Emit only the data consumers need",
		"Use `indexed` parameters, within the three-topic limit",
	}},
	{"Pick the right data structures", []string{
		"Match the data structure to the access pattern",
		"Mappings avoid the length bookkeeping and bounds checks of arrays",
	}},
	{"Avoid repeated work", []string{
		"Cache values that are read more than once",
		"Copy storage values into memory variables before reusing them",
	}},
	{"Use a recent Solidity compiler", []string{
		"Newer compiler releases ship additional gas optimizations",
		"Enable the optimizer with a run count that matches the expected call volume",
	}},
}

// Markdown renders the report for variant v. The output depends only on
// its arguments; now supplies the "Generated" date.
func Markdown(r *gas.Report, v gas.Variant, now time.Time) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no report to render")
	}

	ranked := r.Ranked()

	var b strings.Builder

	// Header.
	fmt.Fprintf(&b, "# %s\n\n", v.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format(DateLayout))

	if v.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", v.Description)
	}

	// Deployment.
	fmt.Fprintln(&b, "## 1. Deployment")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Item | Value |")
	fmt.Fprintln(&b, "|------|-------|")
	fmt.Fprintf(&b, "| Deployment cost | %s gas |\n", formatGas(r.DeploymentCost))
	fmt.Fprintf(&b, "| Contract size | %s bytes |\n", formatGas(r.DeploymentSize))
	fmt.Fprintln(&b)

	// Function table.
	fmt.Fprintln(&b, "## 2. Function Gas Usage")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Function | Min | Avg | Median | Max | Calls |")
	fmt.Fprintln(&b, "|----------|-----|-----|--------|-----|-------|")

	for _, fn := range ranked {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
			fn.Name,
			formatGas(fn.Min),
			formatGas(fn.Avg),
			formatGas(fn.Median),
			formatGas(fn.Max),
			fn.Calls,
		)
	}

	fmt.Fprintln(&b)

	// Ranking.
	fmt.Fprintln(&b, "## 3. Analysis and Recommendations")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "### 3.1 Gas Ranking (low to high)")
	fmt.Fprintln(&b)

	for i, fn := range ranked {
		fmt.Fprintf(&b, "%d. %s: %s gas\n", i+1, fn.Name, formatGas(fn.Avg))
	}

	fmt.Fprintln(&b)

	// Generic tips.
	fmt.Fprintln(&b, "### 3.2 General Gas Optimization Strategies")
	fmt.Fprintln(&b)

	for i, tip := range tips {
		fmt.Fprintf(&b, "%d. **%s**:\n", i+1, tip.title)

		indent := strings.Repeat(" ", len(fmt.Sprintf("%d. ", i+1)))
		for _, point := range tip.points {
			fmt.Fprintf(&b, "%s- %s\n", indent, point)
		}
	}

	fmt.Fprintln(&b)

	// Variant notes.
	if len(v.Notes) > 0 {
		fmt.Fprintln(&b, "### 3.3 Optimizations in This Contract")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "This contract applies the following gas optimizations:")
		fmt.Fprintln(&b)

		for i, note := range v.Notes {
			fmt.Fprintf(&b, "%d. %s\n", i+1, note)
		}

		fmt.Fprintln(&b)
	}

	// Footer.
	testCount := v.Environment.TestCount
	if r.TestsPassed > 0 {
		testCount = r.TestsPassed
	}

	fmt.Fprintln(&b, "## 4. Test Environment")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "- Framework: %s\n", v.Environment.Framework)
	fmt.Fprintf(&b, "- Compiler: %s\n", v.Environment.Compiler)
	fmt.Fprintf(&b, "- Test contract: %s\n", v.TestContract)
	fmt.Fprintf(&b, "- Test cases: %d gas tests\n", testCount)

	return b.String(), nil
}

// Generate writes the markdown report for variant v to w.
func Generate(w io.Writer, r *gas.Report, v gas.Variant, now time.Time) error {
	md, err := Markdown(r, v, now)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, md)

	return err
}

// Render writes the report to w in the given format.
func Render(
	w io.Writer,
	format Format,
	r *gas.Report,
	v gas.Variant,
	now time.Time,
) error {
	switch format {
	case FormatMarkdown:
		return Generate(w, r, v, now)
	case FormatJSON:
		return GenerateJSON(w, r, v, now)
	case FormatHTML:
		return GenerateHTML(w, r, v, now)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
