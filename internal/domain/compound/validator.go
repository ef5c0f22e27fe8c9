package compound

import (
	"fmt"
	"sort"
	"strings"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// balance searches for one nonzero oxidation state per element such that
// Σ(state × count) = 0. Elements are visited from most to least
// electronegative (atomic number breaks ties) and states are tried in
// listed order, so the result does not depend on input order. The
// assignment is returned in the order of elements.
func balance(elements []etypes.Element, counts []int) ([]OxidationTerm, bool) {
	order := make([]int, len(elements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		ex, ey := elements[order[x]], elements[order[y]]
		vx, vy := enOrZero(ex), enOrZero(ey)
		if vx != vy {
			return vx > vy
		}
		return ex.AtomicNumber < ey.AtomicNumber
	})

	chosen := make([]int, len(elements))
	var dfs func(depth, charge int) bool
	dfs = func(depth, charge int) bool {
		if depth == len(order) {
			return charge == 0
		}
		idx := order[depth]
		for _, ox := range elements[idx].NonzeroOxidationStates() {
			chosen[idx] = ox
			if dfs(depth+1, charge+ox*counts[idx]) {
				return true
			}
		}
		return false
	}
	if len(elements) == 0 || !dfs(0, 0) {
		return nil, false
	}

	out := make([]OxidationTerm, len(elements))
	for i, e := range elements {
		out[i] = OxidationTerm{Symbol: e.Symbol, OxidationState: chosen[i], Count: counts[i]}
	}
	return out, true
}

func enOrZero(e etypes.Element) float64 {
	if e.Electronegativity == nil {
		return 0
	}
	return *e.Electronegativity
}

// validateUserFormula checks caller-supplied counts. Failing to balance
// never makes a formula unlikely.
func validateUserFormula(elements []etypes.Element, counts []int, bond bondResult) outcome {
	terms := make([]term, len(elements))
	for i, e := range elements {
		terms[i] = term{e.Symbol, counts[i]}
	}
	formula := render(terms)

	assignment, ok := balance(elements, counts)
	if !ok {
		return outcome{
			likelihood: LikelihoodPossible,
			candidates: []CompoundCandidate{{Formula: formula, OxidationAssignment: []OxidationTerm{}}},
			rationale: []string{fmt.Sprintf(
				"No combination of documented oxidation states balances the charge of %s; it may rely on bonding that formal charges do not capture.",
				formula)},
		}
	}

	candidate := CompoundCandidate{Formula: formula, OxidationAssignment: assignment}
	reasons := []string{fmt.Sprintf("%s balances with %s.", formula, describeAssignment(assignment))}
	delta := *bond.delta

	likelihood := LikelihoodPossible
	switch {
	case bond.bondType == BondIonic && delta > IonicThreshold:
		likelihood = LikelihoodLikely
		reasons = append(reasons, fmt.Sprintf("Strong ionic character (ΔEN = %.2f) supports a stable charge-balanced compound.", delta))
	case delta > PolarThreshold:
		likelihood = LikelihoodLikely
		reasons = append(reasons, fmt.Sprintf("Polar bonding (ΔEN = %.2f) supports a stable charge-balanced compound.", delta))
	default:
		reasons = append(reasons, fmt.Sprintf("Charge balances but the small electronegativity difference (ΔEN = %.2f) gives little driving force.", delta))
	}
	return outcome{
		likelihood: likelihood,
		candidates: []CompoundCandidate{candidate},
		rationale:  reasons,
		balanced:   true,
	}
}

// describeAssignment renders "C -4, H +1 ×4".
func describeAssignment(assignment []OxidationTerm) string {
	parts := make([]string, len(assignment))
	for i, t := range assignment {
		p := fmt.Sprintf("%s %+d", t.Symbol, t.OxidationState)
		if t.Count > 1 {
			p += fmt.Sprintf(" ×%d", t.Count)
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}
