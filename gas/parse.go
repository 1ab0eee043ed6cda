package gas

import (
	"bufio"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	functionRow = regexp.MustCompile(
		`\|\s+(\w+)\s+\|\s+(\d+)\s+\|\s+(\d+)\s+\|\s+(\d+)\s+\|\s+(\d+)\s+\|\s+(\d+)\s+\|`,
	)
	deploymentRow = regexp.MustCompile(`^\|\s*(\d+)\s*\|\s*(\d+)\s*\|`)
	suiteResult   = regexp.MustCompile(`Suite result: \w+\. (\d+) passed`)
	artifactName  = regexp.MustCompile(`\.sol:\w+`)
)

// Parse extracts a Report for v from forge test --gas-report output.
// It never fails: whatever cannot be found is taken from v.Fallback.
// The returned functions are sorted by ascending average gas.
func Parse(output string, v Variant) *Report {
	report := &Report{
		DeploymentCost: v.Fallback.DeploymentCost,
		DeploymentSize: v.Fallback.DeploymentSize,
	}

	if cost, size, ok := parseDeployment(output, v.Contract); ok {
		report.DeploymentCost = cost
		report.DeploymentSize = size
	} else {
		report.Defaulted.Deployment = true
	}

	report.Functions = parseFunctions(output)
	if len(report.Functions) == 0 {
		report.Functions = slices.Clone(v.Fallback.Functions)
		report.Defaulted.Functions = true
	}

	report.TestsPassed = parseTestsPassed(output)
	report.Sort()

	return report
}

func parseDeployment(output, contract string) (int, int, bool) {
	if contract == "" {
		return 0, 0, false
	}

	if cost, size, ok := parseInlineDeployment(output, contract); ok {
		return cost, size, true
	}

	return parseTableDeployment(output, contract)
}

// parseInlineDeployment matches the single-line layout
// "Counter.sol:Counter <n> <cost> <size> bytes".
func parseInlineDeployment(output, contract string) (int, int, bool) {
	name := regexp.QuoteMeta(contract)
	re, err := regexp.Compile(
		name + `\.sol:` + name + `\s+\d+\s+(\d+)\s+(\d+)\s+bytes`,
	)
	if err != nil {
		return 0, 0, false
	}

	m := re.FindStringSubmatch(output)
	if m == nil {
		return 0, 0, false
	}

	return atoiPair(m[1], m[2])
}

// parseTableDeployment reads the tabular layout: a section headed by
// "<path>/Counter.sol:Counter contract", a "Deployment Cost | Deployment
// Size" header, then a row with the two numbers.
func parseTableDeployment(output, contract string) (int, int, bool) {
	header := regexp.MustCompile(
		`(?:^|[\s/|])` + regexp.QuoteMeta(contract+".sol:"+contract) + `\b`,
	)

	var inSection, afterHeader bool

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if artifactName.MatchString(line) {
			inSection = header.MatchString(line)
			afterHeader = false

			continue
		}

		if !inSection {
			continue
		}

		if strings.Contains(line, "Deployment Cost") {
			afterHeader = true

			continue
		}

		if !afterHeader {
			continue
		}

		if m := deploymentRow.FindStringSubmatch(line); m != nil {
			return atoiPair(m[1], m[2])
		}
	}

	return 0, 0, false
}

func parseFunctions(output string) []FunctionGas {
	var functions []FunctionGas

	for _, m := range functionRow.FindAllStringSubmatch(output, -1) {
		values := make([]int, 5)
		valid := true

		for i := range values {
			n, err := strconv.Atoi(m[i+2])
			if err != nil {
				valid = false

				break
			}

			values[i] = n
		}

		if !valid {
			continue
		}

		functions = append(functions, FunctionGas{
			Name:   m[1],
			Min:    values[0],
			Avg:    values[1],
			Median: values[2],
			Max:    values[3],
			Calls:  values[4],
		})
	}

	return functions
}

// parseTestsPassed sums the passed counts of every suite result line.
func parseTestsPassed(output string) int {
	total := 0

	for _, m := range suiteResult.FindAllStringSubmatch(output, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		total += n
	}

	return total
}

func atoiPair(a, b string) (int, int, bool) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, false
	}

	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, false
	}

	return x, y, true
}
