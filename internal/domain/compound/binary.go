package compound

import (
	"fmt"
	"strings"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// outcome is what a solver contributes before the registry pass.
type outcome struct {
	likelihood Likelihood
	candidates []CompoundCandidate
	rationale  []string
	// balanced is set by the user-formula validator only.
	balanced bool
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// solvePair enumerates opposite-sign oxidation pairs of a and b (a rendered
// first) and balances each with GCD subscripts. When two pairs render the
// same formula the one giving the negative state to the more electronegative
// element is kept, in the slot of the first occurrence.
func solvePair(a, b etypes.Element) []CompoundCandidate {
	var out []CompoundCandidate
	index := make(map[string]int)
	for _, oxA := range a.NonzeroOxidationStates() {
		for _, oxB := range b.NonzeroOxidationStates() {
			if (oxA > 0) == (oxB > 0) {
				continue
			}
			g := gcd(abs(oxA), abs(oxB))
			subA, subB := abs(oxB)/g, abs(oxA)/g
			c := CompoundCandidate{
				Formula: render([]term{{a.Symbol, subA}, {b.Symbol, subB}}),
				OxidationAssignment: []OxidationTerm{
					{Symbol: a.Symbol, OxidationState: oxA, Count: subA},
					{Symbol: b.Symbol, OxidationState: oxB, Count: subB},
				},
			}
			if pos, dup := index[c.Formula]; dup {
				prev := out[pos].OxidationAssignment[0].OxidationState
				if polarityFits(a, b, oxA) && !polarityFits(a, b, prev) {
					out[pos] = c
				}
				continue
			}
			index[c.Formula] = len(out)
			out = append(out, c)
		}
	}
	return out
}

// polarityFits reports whether giving a the state oxA leaves the negative
// charge on the more electronegative of a and b.
func polarityFits(a, b etypes.Element, oxA int) bool {
	if !a.HasElectronegativity() || !b.HasElectronegativity() {
		return false
	}
	ea, eb := *a.Electronegativity, *b.Electronegativity
	switch {
	case ea > eb:
		return oxA < 0
	case eb > ea:
		return oxA > 0
	default:
		return false
	}
}

// lackingOxidationStates names elements with no nonzero oxidation state.
func lackingOxidationStates(elements []etypes.Element) []string {
	var names []string
	for _, e := range elements {
		if len(e.NonzeroOxidationStates()) == 0 {
			names = append(names, e.Name)
		}
	}
	return names
}

func missingOxidationRationale(names []string) string {
	return fmt.Sprintf("No nonzero oxidation states are documented for %s, so no charge-balanced formula can be formed.", joinNames(names))
}

// solveBinary handles exactly two elements without explicit counts.
func solveBinary(elements []etypes.Element, bond bondResult) outcome {
	if missing := lackingOxidationStates(elements); len(missing) > 0 {
		return outcome{likelihood: LikelihoodUnlikely, rationale: []string{missingOxidationRationale(missing)}}
	}

	a, b := elements[0], elements[1]
	candidates := solvePair(a, b)
	if len(candidates) == 0 {
		return outcome{
			likelihood: LikelihoodUnlikely,
			rationale: []string{fmt.Sprintf(
				"%s and %s have no opposite-sign oxidation states, so their charges cannot balance.", a.Name, b.Name)},
		}
	}

	delta := *bond.delta
	reasons := []string{bondSentence(bond.bondType, delta)}
	switch {
	case bond.bondType == BondIonic && delta > StrongIonicThreshold:
		reasons = append(reasons, fmt.Sprintf("%s readily forms a stable ionic lattice: %s.", pairLabel(a, b), previewFormulas(candidates)))
	case bond.bondType == BondIonic:
		reasons = append(reasons, fmt.Sprintf("%s can balance charge ionically as %s.", pairLabel(a, b), previewFormulas(candidates)))
	case bond.bondType == BondPolarCovalent:
		reasons = append(reasons, fmt.Sprintf("%s can share electrons unequally to form %s.", pairLabel(a, b), previewFormulas(candidates)))
	default:
		reasons = append(reasons, fmt.Sprintf("%s can share electrons evenly to form %s.", pairLabel(a, b), previewFormulas(candidates)))
	}
	return outcome{likelihood: LikelihoodLikely, candidates: candidates, rationale: reasons}
}

func pairLabel(a, b etypes.Element) string {
	return a.Name + " with " + strings.ToLower(b.Name)
}

// previewFormulas lists up to five formulas for rationale text.
func previewFormulas(candidates []CompoundCandidate) string {
	const preview = 5
	formulas := make([]string, 0, preview)
	for i, c := range candidates {
		if i == preview {
			break
		}
		formulas = append(formulas, c.Formula)
	}
	s := strings.Join(formulas, ", ")
	if len(candidates) > preview {
		s += fmt.Sprintf(" and %d more", len(candidates)-preview)
	}
	return s
}
