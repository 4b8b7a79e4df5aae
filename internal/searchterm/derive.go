package searchterm

import (
	"context"
	"fmt"
)

// Strategy reduces an extracted column to one search term.
type Strategy int

const (
	// StrategyCommonPrefix searches for the prefix shared by all values.
	StrategyCommonPrefix Strategy = iota
	// StrategyFirstValue searches for the first value verbatim.
	StrategyFirstValue
)

func (s Strategy) String() string {
	switch s {
	case StrategyCommonPrefix:
		return "common_prefix"
	case StrategyFirstValue:
		return "first_value"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// StrategyFor returns the default strategy for a column. Dates are searched
// verbatim because a shared date prefix ("01/") matches almost everything.
func StrategyFor(col Column) Strategy {
	if col == ColumnDate {
		return StrategyFirstValue
	}
	return StrategyCommonPrefix
}

// DeriveTerm reduces values to a search term. ok is false when there is
// nothing to search for.
func DeriveTerm(values []string, strategy Strategy) (term string, ok bool) {
	if len(values) == 0 {
		return "", false
	}
	if strategy == StrategyFirstValue {
		return values[0], true
	}
	return CommonPrefix(values), true
}

// Derivation is the outcome of a search-by-derived-term step.
type Derivation struct {
	Column   Column
	Strategy Strategy
	Values   []string
	Term     string
	OK       bool
}

// Derive extracts col from a fresh snapshot and reduces it with the column's
// default strategy.
func Derive(ctx context.Context, src RowSource, col Column) (Derivation, error) {
	values, err := ExtractFrom(ctx, src, col)
	if err != nil {
		return Derivation{}, err
	}
	strategy := StrategyFor(col)
	term, ok := DeriveTerm(values, strategy)
	return Derivation{
		Column:   col,
		Strategy: strategy,
		Values:   values,
		Term:     term,
		OK:       ok,
	}, nil
}
