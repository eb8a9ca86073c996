package compat

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed weights/v1.yaml
var defaultTableYAML []byte

// Categories is the closed set of trait categories every score set carries.
var Categories = []string{
	"interest", "communication", "resonation", "loyalty",
	"attraction", "empathy", "reasoning", "persuasion",
	"stubbornness", "ego", "sacrifice", "desire",
	"adaptability", "responsibility", "accountability", "hostility",
}

// WeightTable is a versioned set of category weights and relationship
// adjustments. Tuning happens by shipping a new table, not by editing the
// scoring algorithm.
type WeightTable struct {
	Version     string                       `yaml:"version" json:"version"`
	Weights     map[string]float64           `yaml:"weights" json:"weights"`
	Adjustments map[RelationshipType]float64 `yaml:"adjustments" json:"adjustments"`
}

// DefaultTable returns a fresh copy of the embedded v1 table.
func DefaultTable() *WeightTable {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		// The embedded table is part of the build.
		panic(fmt.Sprintf("compat: embedded weight table: %v", err))
	}
	return t
}

// LoadTable reads and validates a YAML weight table from path.
func LoadTable(path string) (*WeightTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWeightTable, err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML weight table.
func ParseTable(data []byte) (*WeightTable, error) {
	var t WeightTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWeightTable, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every category and relationship type is covered
// and that all numbers are finite.
func (t *WeightTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidWeightTable)
	}
	var missing []string
	for _, c := range Categories {
		if _, ok := t.Weights[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing weights for %v", ErrInvalidWeightTable, missing)
	}
	for c, w := range t.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight for %q is not finite", ErrInvalidWeightTable, c)
		}
	}
	for _, rt := range RelationshipTypes {
		a, ok := t.Adjustments[rt]
		if !ok {
			return fmt.Errorf("%w: missing adjustment for %q", ErrInvalidWeightTable, rt)
		}
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%w: adjustment for %q is not finite", ErrInvalidWeightTable, rt)
		}
	}
	for rt := range t.Adjustments {
		if !rt.Valid() {
			return fmt.Errorf("%w: unknown relationship type %q", ErrInvalidWeightTable, rt)
		}
	}
	return nil
}

// Weight returns the weight for a category; categories the table does not
// know weigh 1.0.
func (t *WeightTable) Weight(category string) float64 {
	if w, ok := t.Weights[category]; ok {
		return w
	}
	return unknownCategoryWeight
}

// sortedKeys returns the keys of m in lexical order so floating point sums
// are accumulated in a fixed order.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
