// Package gas holds the gas report data model, the known contract variants
// and the parser that extracts both from forge test output.
package gas

import (
	"slices"
)

// FunctionGas is one row of a forge gas report function table.
type FunctionGas struct {
	Name   string `json:"name" yaml:"name"`
	Min    int    `json:"min" yaml:"min"`
	Avg    int    `json:"avg" yaml:"avg"`
	Median int    `json:"median" yaml:"median"`
	Max    int    `json:"max" yaml:"max"`
	Calls  int    `json:"calls" yaml:"calls"`
}

// DefaultedFields records which parts of a Report came from the variant
// fallbacks rather than from parsed output.
type DefaultedFields struct {
	Deployment bool `json:"deployment"`
	Functions  bool `json:"functions"`
}

// Report is the gas usage of one contract variant.
type Report struct {
	DeploymentCost int             `json:"deployment_cost"`
	DeploymentSize int             `json:"deployment_size"`
	Functions      []FunctionGas   `json:"functions"`
	TestsPassed    int             `json:"tests_passed,omitempty"`
	Defaulted      DefaultedFields `json:"defaulted"`
}

// Sort orders the functions by ascending average gas. Rows with equal
// averages keep their relative order.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Functions, compareAvg)
}

// Ranked returns a copy of the functions ordered by ascending average gas.
func (r *Report) Ranked() []FunctionGas {
	ranked := slices.Clone(r.Functions)
	slices.SortStableFunc(ranked, compareAvg)

	return ranked
}

// Function returns the row with the given name.
func (r *Report) Function(name string) (FunctionGas, bool) {
	for _, fn := range r.Functions {
		if fn.Name == name {
			return fn, true
		}
	}

	return FunctionGas{}, false
}

func compareAvg(a, b FunctionGas) int {
	switch {
	case a.Avg < b.Avg:
		return -1
	case a.Avg > b.Avg:
		return 1
	default:
		return 0
	}
}
