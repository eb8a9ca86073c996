// Package compat computes a single 0-100 compatibility percentage from two
// people's trait-category scores and the context of their relationship.
package compat

import (
	"math"
	"sort"
	"strings"
)

// Scoring constants.
const (
	unknownCategoryWeight = 1.0
	minOverall            = 0
	maxOverall            = 100
)

// RelationshipType is the closed set of relationship contexts.
type RelationshipType string

// Relationship types.
const (
	Consistent  RelationshipType = "consistent"
	Complicated RelationshipType = "complicated"
	Toxic       RelationshipType = "toxic"
)

// RelationshipTypes lists every valid RelationshipType.
var RelationshipTypes = []RelationshipType{Consistent, Complicated, Toxic}

// Valid reports whether r is one of the known relationship types.
func (r RelationshipType) Valid() bool {
	switch r {
	case Consistent, Complicated, Toxic:
		return true
	default:
		return false
	}
}

// ParseRelationshipType accepts a relationship type name, case-insensitively.
// There is no default: anything else is a *RelationshipTypeError.
func ParseRelationshipType(s string) (RelationshipType, error) {
	r := RelationshipType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", &RelationshipTypeError{Value: s}
	}
	return r, nil
}

// ScoreSet maps category names to scores. Callers pick one scale (0-100 is
// conventional) and use it consistently.
type ScoreSet map[string]float64

// Merge combines two people's score sets into one by averaging categories
// both carry and keeping categories only one carries.
func Merge(a, b ScoreSet) ScoreSet {
	out := make(ScoreSet, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if av, ok := a[k]; ok {
			out[k] = (av + v) / 2
			continue
		}
		out[k] = v
	}
	return out
}

// Breakdown exposes every intermediate value of a score.
type Breakdown struct {
	TableVersion   string           `json:"table_version"`
	Relationship   RelationshipType `json:"relationship"`
	WeightedSum    float64          `json:"weighted_sum"`
	TotalAbsWeight float64          `json:"total_abs_weight"`
	Normalized     float64          `json:"normalized"`
	Adjustment     float64          `json:"adjustment"`
	Adjusted       float64          `json:"adjusted"`
	Overall        int              `json:"overall"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeightTable replaces the embedded default table.
func WithWeightTable(t *WeightTable) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithPartialScoreSets allows score sets that omit canonical categories.
func WithPartialScoreSets(allow bool) Option {
	return func(e *Engine) {
		e.allowPartial = allow
	}
}

// Engine scores compatibility. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	table        *WeightTable
	allowPartial bool
}

// NewEngine creates an Engine with the embedded v1 weight table. Score sets
// must carry all sixteen categories unless WithPartialScoreSets is given.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = DefaultTable()
	}
	return e
}

// Table returns the weight table in use.
func (e *Engine) Table() *WeightTable { return e.table }

// Score returns the overall compatibility in [0,100].
func (e *Engine) Score(set ScoreSet, rel RelationshipType) (int, error) {
	b, err := e.Breakdown(set, rel)
	if err != nil {
		return 0, err
	}
	return b.Overall, nil
}

// ScorePair merges two people's score sets and scores the result.
func (e *Engine) ScorePair(a, b ScoreSet, rel RelationshipType) (Breakdown, error) {
	return e.Breakdown(Merge(a, b), rel)
}

// Breakdown scores set and returns the intermediate values:
//
//	normalized = Σ score[c]·w[c] / Σ |w[c]|
//	overall    = round(clamp(normalized + adjustment[rel], 0, 100))
func (e *Engine) Breakdown(set ScoreSet, rel RelationshipType) (Breakdown, error) {
	adj, ok := e.table.Adjustments[rel]
	if !rel.Valid() || !ok {
		return Breakdown{}, &RelationshipTypeError{Value: string(rel)}
	}
	if len(set) == 0 {
		return Breakdown{}, &ScoreSetError{Reason: "no categories"}
	}
	if err := e.check(set); err != nil {
		return Breakdown{}, err
	}

	var weighted, total float64
	for _, c := range sortedKeys(set) {
		w := e.table.Weight(c)
		weighted += set[c] * w
		total += math.Abs(w)
	}
	if total == 0 {
		return Breakdown{}, &ScoreSetError{Reason: "total weight is zero"}
	}

	normalized := weighted / total
	adjusted := normalized + adj
	return Breakdown{
		TableVersion:   e.table.Version,
		Relationship:   rel,
		WeightedSum:    weighted,
		TotalAbsWeight: total,
		Normalized:     normalized,
		Adjustment:     adj,
		Adjusted:       adjusted,
		Overall:        int(math.Round(math.Max(minOverall, math.Min(maxOverall, adjusted)))),
	}, nil
}

func (e *Engine) check(set ScoreSet) error {
	var bad []string
	for c, v := range set {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, c)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return &ScoreSetError{Reason: "scores must be finite", Categories: bad}
	}
	if e.allowPartial {
		return nil
	}
	var missing []string
	for _, c := range Categories {
		if _, ok := set[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ScoreSetError{Reason: "missing categories", Categories: missing}
	}
	return nil
}
