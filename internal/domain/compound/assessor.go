package compound

import (
	"fmt"
	"strings"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// Strategy selects how the multi-element search picks oxidation states.
type Strategy string

const (
	// StrategyPreferred searches counts over each element's preferred state.
	StrategyPreferred Strategy = "preferred"
	// StrategyExhaustive searches counts over every combination of states.
	StrategyExhaustive Strategy = "exhaustive"
)

// ParseStrategy accepts "preferred", "exhaustive" or "" (preferred).
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyPreferred:
		return StrategyPreferred, nil
	case StrategyExhaustive:
		return StrategyExhaustive, nil
	default:
		return "", fmt.Errorf("compound: unknown search strategy %q", s)
	}
}

// Analyzer runs the likelihood assessment. The zero value is not usable;
// construct with NewAnalyzer.
type Analyzer struct {
	strategy Strategy
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStrategy sets the multi-element search strategy.
func WithStrategy(s Strategy) Option {
	return func(a *Analyzer) { a.strategy = s }
}

// NewAnalyzer returns an Analyzer using StrategyPreferred unless overridden.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{strategy: StrategyPreferred}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Strategy reports the configured search strategy.
func (a *Analyzer) Strategy() Strategy { return a.strategy }

var defaultAnalyzer = NewAnalyzer()

// Analyze runs the default analyzer.
func Analyze(elements []etypes.Element, counts []ElementCount) CompoundAnalysis {
	return defaultAnalyzer.Analyze(elements, counts)
}

// Analyze assesses whether elements can form a compound. counts may be nil;
// when present it switches to user-formula validation and any element it
// does not mention counts once. Callers supply at least two distinct
// elements.
func (a *Analyzer) Analyze(elements []etypes.Element, counts []ElementCount) CompoundAnalysis {
	sorted := sortElements(elements)
	userSpecified := len(counts) > 0

	countVec := make([]int, len(sorted))
	countMap := make(map[string]int, len(sorted))
	for i, e := range sorted {
		countVec[i] = 1
		for _, c := range counts {
			if c.Symbol == e.Symbol {
				countVec[i] = c.Count
			}
		}
		countMap[e.Symbol] = countVec[i]
	}

	result := CompoundAnalysis{
		Elements:      sorted,
		UserSpecified: userSpecified,
		Candidates:    []CompoundCandidate{},
	}
	renderedOnly := []CompoundCandidate{{
		Formula:             CanonicalFormula(sorted, countMap),
		OxidationAssignment: []OxidationTerm{},
	}}

	if note := nobleGasRationale(sorted); note != "" {
		result.Likelihood = LikelihoodUnlikely
		result.BondType = BondNone
		result.Rationale = note
		if userSpecified {
			result.Candidates = renderedOnly
		}
		return result
	}

	bond := classifyBond(sorted)
	result.BondType = bond.bondType
	result.ElectronegativityDifference = bond.delta

	var out outcome
	switch {
	case len(bond.missing) > 0:
		out = outcome{
			likelihood: LikelihoodPossible,
			candidates: renderedOnly,
			rationale:  []string{missingElectronegativityRationale(bond.missing)},
		}
	case userSpecified:
		out = validateUserFormula(sorted, countVec, bond)
	case len(sorted) == 2:
		out = solveBinary(sorted, bond)
	default:
		out = searchMulti(sorted, bond, a.strategy)
	}

	if len(out.candidates) > MaxSurfacedCandidates {
		out.candidates = out.candidates[:MaxSurfacedCandidates]
	}
	if out.candidates != nil {
		result.Candidates = out.candidates
	}

	notes := registryNotes(sorted, out, userSpecified)
	result.Likelihood = out.likelihood
	result.RegistryMatch = len(notes) > 0
	if len(notes) > 0 && !out.likelihood.AtLeast(LikelihoodLikely) {
		result.Likelihood = LikelihoodLikely
	}
	result.Rationale = strings.Join(append(notes, out.rationale...), " ")
	return result
}

// registryNotes collects known-compound sentences. User formulas match by
// exact formula once balanced; other paths match on the element set first
// and then on the first surfaced candidate with a known formula.
func registryNotes(elements []etypes.Element, out outcome, userSpecified bool) []string {
	var notes []string
	if userSpecified {
		if out.balanced && len(out.candidates) == 1 {
			if note, ok := lookupComposition(candidateCounts(out.candidates[0])); ok {
				notes = append(notes, note)
			}
		}
		return notes
	}

	symbols := make([]string, len(elements))
	for i, e := range elements {
		symbols[i] = e.Symbol
	}
	if note, ok := LookupElementSet(symbols...); ok {
		notes = append(notes, note)
	}
	for _, c := range out.candidates {
		if len(c.OxidationAssignment) == 0 {
			continue
		}
		if note, ok := lookupComposition(candidateCounts(c)); ok {
			notes = append(notes, note)
			break
		}
	}
	return notes
}
