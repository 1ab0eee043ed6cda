package gas

import (
	"fmt"
	"slices"
)

// Names of the built-in variants.
const (
	Original  = "original"
	Optimized = "optimized"
)

// Fallback holds the values used when forge output cannot be parsed.
type Fallback struct {
	DeploymentCost int           `yaml:"deployment_cost"`
	DeploymentSize int           `yaml:"deployment_size"`
	Functions      []FunctionGas `yaml:"functions"`
}

// Environment describes the test setup printed in the report footer.
type Environment struct {
	Framework string `yaml:"framework"`
	Compiler  string `yaml:"compiler"`
	TestCount int    `yaml:"test_count"`
}

// Variant describes one contract under test and how to report on it.
type Variant struct {
	Name         string      `yaml:"name"`
	TestContract string      `yaml:"test_contract"`
	Contract     string      `yaml:"contract"`
	Title        string      `yaml:"title"`
	Description  string      `yaml:"description"`
	OutputFile   string      `yaml:"output_file"`
	Fallback     Fallback    `yaml:"fallback"`
	Notes        []string    `yaml:"notes"`
	Environment  Environment `yaml:"environment"`
}

// Qualified returns the forge artifact identifier, e.g. Counter.sol:Counter.
func (v Variant) Qualified() string {
	return v.Contract + ".sol:" + v.Contract
}

var defaultEnvironment = Environment{
	Framework: "Foundry",
	Compiler:  "Solidity ^0.8.13",
	TestCount: 10,
}

// Builtin returns the original and optimized Counter variants.
func Builtin() []Variant {
	return []Variant{
		{
			Name:         Original,
			TestContract: "CounterGasTest",
			Contract:     "Counter",
			Title:        "Counter Gas Usage Report (Original)",
			Description:  "Gas usage of the original Counter contract.",
			OutputFile:   "gas-report-original.md",
			Fallback: Fallback{
				DeploymentCost: 652421,
				DeploymentSize: 3151,
				Functions: []FunctionGas{
					{Name: "number", Min: 2424, Avg: 2424, Median: 2424, Max: 2424, Calls: 11},
					{Name: "reset", Min: 23765, Avg: 23765, Median: 23765, Max: 23765, Calls: 1},
					{Name: "increment", Min: 28685, Avg: 34385, Median: 28685, Max: 45785, Calls: 6},
					{Name: "decrement", Min: 28806, Avg: 28806, Median: 28806, Max: 28806, Calls: 1},
					{Name: "multiply", Min: 29055, Avg: 29055, Median: 29055, Max: 29055, Calls: 1},
					{Name: "subtract", Min: 29118, Avg: 29118, Median: 29118, Max: 29118, Calls: 1},
					{Name: "setNumber", Min: 45940, Avg: 45942, Median: 45940, Max: 45952, Calls: 5},
					{Name: "add", Min: 46071, Avg: 46071, Median: 46071, Max: 46071, Calls: 2},
				},
			},
			Environment: defaultEnvironment,
		},
		{
			Name:         Optimized,
			TestContract: "CounterOptimizedGasTest",
			Contract:     "CounterOptimized",
			Title:        "CounterOptimized Gas Usage Report (Optimized)",
			Description:  "Gas usage of the optimized Counter contract.",
			OutputFile:   "gas-report-optimized.md",
			Fallback: Fallback{
				DeploymentCost: 620000,
				DeploymentSize: 2800,
				Functions: []FunctionGas{
					{Name: "number", Min: 2424, Avg: 2424, Median: 2424, Max: 2424, Calls: 11},
					{Name: "reset", Min: 22000, Avg: 22000, Median: 22000, Max: 22000, Calls: 1},
					{Name: "increment", Min: 26000, Avg: 31000, Median: 26000, Max: 42000, Calls: 6},
					{Name: "decrement", Min: 26200, Avg: 26200, Median: 26200, Max: 26200, Calls: 1},
					{Name: "multiply", Min: 26500, Avg: 26500, Median: 26500, Max: 26500, Calls: 1},
					{Name: "subtract", Min: 26600, Avg: 26600, Median: 26600, Max: 26600, Calls: 1},
					{Name: "setNumber", Min: 43000, Avg: 43000, Median: 43000, Max: 43000, Calls: 5},
					{Name: "add", Min: 43500, Avg: 43500, Median: 43500, Max: 43500, Calls: 2},
				},
			},
			Notes: []string{
				"**Narrower types**: `number` is stored as `uint64` instead of `uint256`, reducing storage footprint",
				"**Inline assembly**: several functions write storage directly in assembly, skipping Solidity overhead",
				"**Leaner events**: simplified event layout, less log data",
				"**Simpler functions**: fewer steps in each function body",
				"**Short-circuit checks**: `decrement` and `subtract` use short-circuit logic for their guards",
			},
			Environment: defaultEnvironment,
		},
	}
}

// Registry is an ordered set of variants addressable by name.
type Registry struct {
	variants []Variant
}

// NewRegistry creates a Registry holding the built-in variants.
func NewRegistry() *Registry {
	return &Registry{variants: Builtin()}
}

// Lookup returns the variant with the given name.
func (r *Registry) Lookup(name string) (Variant, bool) {
	for _, v := range r.variants {
		if v.Name == name {
			return v, true
		}
	}

	return Variant{}, false
}

// Default returns the variant used when none is selected.
func (r *Registry) Default() Variant {
	v, _ := r.Lookup(Optimized)

	return v
}

// Resolve picks the variant named by arg. An empty or unknown name
// yields the default variant and ok=false.
func (r *Registry) Resolve(arg string) (Variant, bool) {
	if v, ok := r.Lookup(arg); ok {
		return v, true
	}

	return r.Default(), false
}

// Names returns variant names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for _, v := range r.variants {
		names = append(names, v.Name)
	}

	return names
}

// All returns a copy of the registered variants.
func (r *Registry) All() []Variant {
	return slices.Clone(r.variants)
}

// Merge overlays the non-zero fields of v on the variant with the same
// name, or registers v as a new variant. A new variant must name its test
// contract and contract.
func (r *Registry) Merge(v Variant) error {
	if v.Name == "" {
		return fmt.Errorf("variant name is required")
	}

	idx := slices.IndexFunc(r.variants, func(existing Variant) bool {
		return existing.Name == v.Name
	})

	if idx < 0 {
		if v.TestContract == "" || v.Contract == "" {
			return fmt.Errorf(
				"variant %q: test_contract and contract are required", v.Name,
			)
		}

		if v.OutputFile == "" {
			v.OutputFile = "gas-report-" + v.Name + ".md"
		}

		if v.Title == "" {
			v.Title = v.Contract + " Gas Usage Report"
		}

		if v.Environment == (Environment{}) {
			v.Environment = defaultEnvironment
		}

		r.variants = append(r.variants, v)

		return nil
	}

	r.variants[idx] = overlay(r.variants[idx], v)

	return nil
}

func overlay(base, o Variant) Variant {
	setString(&base.TestContract, o.TestContract)
	setString(&base.Contract, o.Contract)
	setString(&base.Title, o.Title)
	setString(&base.Description, o.Description)
	setString(&base.OutputFile, o.OutputFile)
	setString(&base.Environment.Framework, o.Environment.Framework)
	setString(&base.Environment.Compiler, o.Environment.Compiler)

	if o.Environment.TestCount > 0 {
		base.Environment.TestCount = o.Environment.TestCount
	}

	if o.Fallback.DeploymentCost > 0 {
		base.Fallback.DeploymentCost = o.Fallback.DeploymentCost
	}

	if o.Fallback.DeploymentSize > 0 {
		base.Fallback.DeploymentSize = o.Fallback.DeploymentSize
	}

	if len(o.Fallback.Functions) > 0 {
		base.Fallback.Functions = slices.Clone(o.Fallback.Functions)
	}

	// A non-nil empty list clears the notes.
	if o.Notes != nil {
		base.Notes = slices.Clone(o.Notes)
	}

	return base
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
