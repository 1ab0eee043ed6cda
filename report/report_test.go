package report

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/gasreport/gas"
)

var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

func builtin(t *testing.T, name string) gas.Variant {
	t.Helper()

	v, ok := gas.NewRegistry().Lookup(name)
	require.True(t, ok)

	return v
}

func sampleReport() *gas.Report {
	return &gas.Report{
		DeploymentCost: 652421,
		DeploymentSize: 3151,
		Functions: []gas.FunctionGas{
			{Name: "setNumber", Min: 45940, Avg: 45942, Median: 45940, Max: 45952, Calls: 5},
			{Name: "number", Min: 2424, Avg: 2424, Median: 2424, Max: 2424, Calls: 11},
			{Name: "increment", Min: 28685, Avg: 34385, Median: 28685, Max: 45785, Calls: 6},
		},
	}
}

func TestMarkdownSections(t *testing.T) {
	md, err := Markdown(sampleReport(), builtin(t, gas.Original), fixedNow)
	require.NoError(t, err)

	for _, want := range []string{
		"# Counter Gas Usage Report (Original)\n",
		"Generated: 2026-10-19\n",
		"| Deployment cost | 652,421 gas |",
		"| Contract size | 3,151 bytes |",
		"| increment | 28,685 | 34,385 | 28,685 | 45,785 | 6 |",
		"| number | 2,424 | 2,424 | 2,424 | 2,424 | 11 |",
		"### 3.1 Gas Ranking (low to high)",
		"1. number: 2,424 gas\n2. increment: 34,385 gas\n3. setNumber: 45,942 gas\n",
		"### 3.2 General Gas Optimization Strategies",
		"10. **Use a recent Solidity compiler**:\n    - ",
		"- Framework: Foundry",
		"- Compiler: Solidity ^0.8.13",
		"- Test contract: CounterGasTest",
		"- Test cases: 10 gas tests",
	} {
		assert.Contains(t, md, want)
	}

	assert.NotContains(t, md, "### 3.3")
}

func TestMarkdownTenTips(t *testing.T) {
	md, err := Markdown(sampleReport(), builtin(t, gas.Original), fixedNow)
	require.NoError(t, err)

	section := md[strings.Index(md, "### 3.2"):strings.Index(md, "## 4.")]
	headings := regexp.MustCompile(`(?m)^\d+\. \*\*`).FindAllString(section, -1)
	assert.Len(t, headings, 10)
}

func TestMarkdownOptimizedNotes(t *testing.T) {
	v := builtin(t, gas.Optimized)

	md, err := Markdown(sampleReport(), v, fixedNow)
	require.NoError(t, err)

	assert.Contains(t, md, "### 3.3 Optimizations in This Contract")
	for _, note := range v.Notes {
		assert.Contains(t, md, note)
	}

	assert.Contains(t, md, "- Test contract: CounterOptimizedGasTest")
	assert.Less(t, strings.Index(md, "### 3.3"), strings.Index(md, "## 4. Test Environment"))
}

func TestMarkdownFunctionsAscending(t *testing.T) {
	md, err := Markdown(sampleReport(), builtin(t, gas.Original), fixedNow)
	require.NoError(t, err)

	table := md[strings.Index(md, "## 2."):strings.Index(md, "## 3.")]
	row := regexp.MustCompile(`(?m)^\| (\w+) \| [\d,]+ \| ([\d,]+) \|`)

	var avgs []int
	for _, m := range row.FindAllStringSubmatch(table, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
		require.NoError(t, err)
		avgs = append(avgs, n)
	}

	require.Len(t, avgs, 3)
	assert.IsNonDecreasing(t, avgs)
}

func TestMarkdownDeterministic(t *testing.T) {
	v := builtin(t, gas.Optimized)

	first, err := Markdown(sampleReport(), v, fixedNow)
	require.NoError(t, err)

	second, err := Markdown(sampleReport(), v, fixedNow.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	nextDay, err := Markdown(sampleReport(), v, fixedNow.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t,
		strings.Replace(first, "2026-10-19", "2026-10-20", 1),
		nextDay,
		"only the date line may differ",
	)
}

func TestMarkdownParsedTestCount(t *testing.T) {
	r := sampleReport()
	r.TestsPassed = 7

	md, err := Markdown(r, builtin(t, gas.Original), fixedNow)
	require.NoError(t, err)
	assert.Contains(t, md, "- Test cases: 7 gas tests")
}

func TestMarkdownDoesNotReorderInput(t *testing.T) {
	r := sampleReport()

	_, err := Markdown(r, builtin(t, gas.Original), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "setNumber", r.Functions[0].Name)
}

func TestMarkdownNilReport(t *testing.T) {
	_, err := Markdown(nil, builtin(t, gas.Original), fixedNow)
	assert.Error(t, err)
}

func TestGenerateFromParsedFallback(t *testing.T) {
	v := builtin(t, gas.Optimized)

	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, gas.Parse("", v), v, fixedNow))

	out := buf.String()
	assert.Contains(t, out, "| Deployment cost | 620,000 gas |")
	assert.Contains(t, out, "8. add: 43,500 gas")
}

func TestGenerateJSON(t *testing.T) {
	v := builtin(t, gas.Original)

	var buf bytes.Buffer
	require.NoError(t, GenerateJSON(&buf, sampleReport(), v, fixedNow))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, gas.Original, doc.Variant)
	assert.Equal(t, "Counter.sol:Counter", doc.Contract)
	assert.Equal(t, "2026-10-19", doc.Generated)
	require.Len(t, doc.Report.Functions, 3)
	assert.Equal(t, "number", doc.Report.Functions[0].Name)
	assert.Equal(t, 652421, doc.Report.DeploymentCost)
}

func TestGenerateHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateHTML(&buf, sampleReport(), builtin(t, gas.Original), fixedNow))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Counter Gas Usage Report (Original)</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>increment</td>")
	assert.Contains(t, out, "<strong>Use view/pure functions</strong>")
}

func TestRender(t *testing.T) {
	v := builtin(t, gas.Original)

	for _, format := range Formats() {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, format, sampleReport(), v, fixedNow), format)
		assert.NotEmpty(t, buf.String(), format)
	}

	assert.Error(t, Render(&bytes.Buffer{}, Format("pdf"), sampleReport(), v, fixedNow))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{" html ", FormatHTML, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)

			continue
		}

		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, ".md", FormatMarkdown.Ext())
	assert.Equal(t, ".json", FormatJSON.Ext())
	assert.Equal(t, ".html", FormatHTML.Ext())
}

func TestFormatGas(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{2424, "2,424"},
		{652421, "652,421"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatGas(tt.input), "formatGas(%d)", tt.input)
	}
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+1,500", formatDelta(1500))
	assert.Equal(t, "-32,421", formatDelta(-32421))
	assert.Equal(t, "0", formatDelta(0))

	assert.Equal(t, "-50.00%", formatChange(-50, 100))
	assert.Equal(t, "+12.50%", formatChange(1, 8))
	assert.Equal(t, "-", formatChange(5, 0))
}
