package compound

import (
	"fmt"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// Search bounds.
const (
	MaxAtoms              = 12
	MaxFormulas           = 50
	MaxFallbackFormulas   = 10
	MaxSurfacedCandidates = 20
)

// preferredState picks the nonzero state with the smallest magnitude,
// positive on ties.
func preferredState(states []int) (int, bool) {
	best, found := 0, false
	for _, ox := range states {
		if ox == 0 {
			continue
		}
		if !found || abs(ox) < abs(best) || (abs(ox) == abs(best) && ox > 0) {
			best, found = ox, true
		}
	}
	return best, found
}

// countSearch walks atom counts 0..MaxAtoms per element for one fixed
// oxidation-state vector.
type countSearch struct {
	elements []etypes.Element
	states   []int
	// maxAbsFrom[i] is max |states[j]| for j >= i.
	maxAbsFrom []int
	counts     []int
	limit      int
	seen       map[string]bool
	out        []CompoundCandidate
}

func newCountSearch(elements []etypes.Element, limit int, seen map[string]bool) *countSearch {
	return &countSearch{
		elements: elements,
		counts:   make([]int, len(elements)),
		limit:    limit,
		seen:     seen,
	}
}

func (s *countSearch) full() bool { return len(s.out) >= s.limit }

// run searches with the given states, appending to previous results.
func (s *countSearch) run(states []int) {
	s.states = states
	n := len(states)
	s.maxAbsFrom = make([]int, n+1)
	for i := n - 1; i >= 0; i-- {
		m := abs(states[i])
		if s.maxAbsFrom[i+1] > m {
			m = s.maxAbsFrom[i+1]
		}
		s.maxAbsFrom[i] = m
	}
	if n > 0 {
		s.dfs(0, 0)
	}
}

func (s *countSearch) dfs(i, charge int) {
	if s.full() {
		return
	}
	last := len(s.states) - 1
	ox := s.states[i]

	if i == last {
		if charge%ox != 0 {
			return
		}
		c := -charge / ox
		if c < 0 || c > MaxAtoms {
			return
		}
		s.counts[i] = c
		s.emit()
		s.counts[i] = 0
		return
	}

	remaining := last - i
	bound := remaining * MaxAtoms * s.maxAbsFrom[i+1]
	for c := 0; c <= MaxAtoms; c++ {
		next := charge + c*ox
		if abs(next) > bound {
			continue
		}
		s.counts[i] = c
		s.dfs(i+1, next)
		if s.full() {
			break
		}
	}
	s.counts[i] = 0
}

func (s *countSearch) emit() {
	nonzero := 0
	for _, c := range s.counts {
		if c > 0 {
			nonzero++
		}
	}
	if nonzero < 2 {
		return
	}
	terms := make([]term, 0, nonzero)
	assignment := make([]OxidationTerm, 0, nonzero)
	for i, c := range s.counts {
		if c == 0 {
			continue
		}
		terms = append(terms, term{s.elements[i].Symbol, c})
		assignment = append(assignment, OxidationTerm{Symbol: s.elements[i].Symbol, OxidationState: s.states[i], Count: c})
	}
	formula := render(terms)
	if s.seen != nil {
		if s.seen[formula] {
			return
		}
		s.seen[formula] = true
	}
	s.out = append(s.out, CompoundCandidate{Formula: formula, OxidationAssignment: assignment})
}

// searchPreferred runs the count search over each element's preferred state.
func searchPreferred(elements []etypes.Element) []CompoundCandidate {
	states := make([]int, len(elements))
	for i, e := range elements {
		states[i], _ = preferredState(e.OxidationStates)
	}
	s := newCountSearch(elements, MaxFormulas, nil)
	s.run(states)
	return s.out
}

// searchExhaustive repeats the count search for every combination of
// nonzero states, in listed order, sharing the MaxFormulas cap. A formula
// keeps the assignment that found it first.
func searchExhaustive(elements []etypes.Element) []CompoundCandidate {
	options := make([][]int, len(elements))
	for i, e := range elements {
		options[i] = e.NonzeroOxidationStates()
	}
	s := newCountSearch(elements, MaxFormulas, make(map[string]bool))
	states := make([]int, len(elements))
	var walk func(i int)
	walk = func(i int) {
		if s.full() {
			return
		}
		if i == len(elements) {
			s.run(append([]int(nil), states...))
			return
		}
		for _, ox := range options[i] {
			states[i] = ox
			walk(i + 1)
			if s.full() {
				return
			}
		}
	}
	walk(0)
	return s.out
}

// searchPairs balances every element pair (i < j) on its own, leaving the
// other elements out, up to MaxFallbackFormulas.
func searchPairs(elements []etypes.Element) []CompoundCandidate {
	var out []CompoundCandidate
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			for _, c := range solvePair(elements[i], elements[j]) {
				if len(out) == MaxFallbackFormulas {
					return out
				}
				out = append(out, c)
			}
		}
	}
	return out
}

// searchMulti handles three or more elements without explicit counts.
func searchMulti(elements []etypes.Element, bond bondResult, strategy Strategy) outcome {
	if missing := lackingOxidationStates(elements); len(missing) > 0 {
		return outcome{likelihood: LikelihoodUnlikely, rationale: []string{missingOxidationRationale(missing)}}
	}

	var candidates []CompoundCandidate
	if strategy == StrategyExhaustive {
		candidates = searchExhaustive(elements)
	} else {
		candidates = searchPreferred(elements)
	}

	var reasons []string
	if len(candidates) == 0 {
		candidates = searchPairs(elements)
		if len(candidates) > 0 {
			reasons = append(reasons, "No combination using all elements balanced charge; only pairwise formulas were found.")
		}
	}

	if len(candidates) == 0 {
		return outcome{
			likelihood: LikelihoodUnlikely,
			rationale: []string{fmt.Sprintf(
				"No charge-balanced combination of %s was found within %d atoms per element.", namesOf(elements), MaxAtoms)},
		}
	}

	delta := 0.0
	if bond.delta != nil {
		delta = *bond.delta
	}
	switch {
	case len(candidates) > MaxSurfacedCandidates:
		reasons = append(reasons, fmt.Sprintf(
			"%d charge-balanced stoichiometries fit the search bounds; too many viable arrangements to single out a stable compound.",
			len(candidates)))
	case delta > MixedThreshold:
		reasons = append(reasons, fmt.Sprintf(
			"Mixed ionic and covalent character (ΔEN = %.2f) makes the stability of these arrangements uncertain.", delta))
	default:
		reasons = append(reasons, fmt.Sprintf(
			"Bonding leans covalent (ΔEN = %.2f); balanced arrangements exist but their stability is uncertain.", delta))
	}
	return outcome{likelihood: LikelihoodPossible, candidates: candidates, rationale: reasons}
}

func namesOf(elements []etypes.Element) string {
	names := make([]string, len(elements))
	for i, e := range elements {
		names[i] = e.Name
	}
	return joinNames(names)
}
