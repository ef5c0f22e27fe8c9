package compound

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CompoundForge/internal/domain/element"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

var testRepo = element.NewMemoryRepository()

func mustElements(t *testing.T, symbols ...string) []etypes.Element {
	t.Helper()
	out := make([]etypes.Element, 0, len(symbols))
	for _, s := range symbols {
		e, err := testRepo.FindBySymbol(context.Background(), s)
		require.NoError(t, err, s)
		out = append(out, *e)
	}
	return out
}

func symbolsOf(elements []etypes.Element) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.Symbol
	}
	return out
}

func findCandidate(a CompoundAnalysis, formula string) (CompoundCandidate, bool) {
	for _, c := range a.Candidates {
		if c.Formula == formula {
			return c, true
		}
	}
	return CompoundCandidate{}, false
}

func assignmentOf(c CompoundCandidate) map[string]int {
	out := make(map[string]int, len(c.OxidationAssignment))
	for _, t := range c.OxidationAssignment {
		out[t.Symbol] = t.OxidationState
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Reference scenarios
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_HydrogenOxygen(t *testing.T) {
	a := Analyze(mustElements(t, "O", "H"), nil)

	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	assert.Equal(t, BondPolarCovalent, a.BondType)
	assert.Equal(t, []string{"H", "O"}, symbolsOf(a.Elements))

	water, ok := findCandidate(a, "H2O")
	require.True(t, ok, "candidates: %v", a.Formulas())
	assert.Equal(t, map[string]int{"H": 1, "O": -2}, assignmentOf(water))
	assert.NotContains(t, a.Formulas(), "HO2")
	assert.Contains(t, a.Rationale, "Hydrogen and oxygen form water")
	require.NotNil(t, a.ElectronegativityDifference)
	assert.InDelta(t, 1.24, *a.ElectronegativityDifference, 1e-9)
	assert.False(t, a.UserSpecified)
}

func TestAnalyze_SodiumChlorine(t *testing.T) {
	a := Analyze(mustElements(t, "Na", "Cl"), nil)

	assert.Equal(t, BondIonic, a.BondType)
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	require.NotEmpty(t, a.Candidates)
	assert.Equal(t, "NaCl", a.Candidates[0].Formula)
	assert.Equal(t, map[string]int{"Na": 1, "Cl": -1}, assignmentOf(a.Candidates[0]))
	assert.InDelta(t, 2.23, *a.ElectronegativityDifference, 1e-9)
	assert.Contains(t, a.Rationale, "Strongly ionic")
}

func TestAnalyze_HeliumOxygen(t *testing.T) {
	a := Analyze(mustElements(t, "He", "O"), nil)

	assert.Equal(t, LikelihoodUnlikely, a.Likelihood)
	assert.Equal(t, BondNone, a.BondType)
	assert.Empty(t, a.Candidates)
	assert.NotNil(t, a.Candidates)
	assert.Nil(t, a.ElectronegativityDifference)
	assert.Equal(t, "Helium is a noble gas with a complete valence shell and does not readily form compounds.", a.Rationale)
}

func TestAnalyze_UserMethane(t *testing.T) {
	a := Analyze(mustElements(t, "C", "H"), []ElementCount{{Symbol: "C", Count: 1}, {Symbol: "H", Count: 4}})

	assert.True(t, a.UserSpecified)
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	require.Len(t, a.Candidates, 1)
	c := a.Candidates[0]
	assert.Equal(t, "H4C", c.Formula)
	assert.Equal(t, []OxidationTerm{
		{Symbol: "H", OxidationState: 1, Count: 4},
		{Symbol: "C", OxidationState: -4, Count: 1},
	}, c.OxidationAssignment)
	assert.Contains(t, a.Rationale, "methane")
}

func TestAnalyze_NoElectronegativityData(t *testing.T) {
	a := Analyze(mustElements(t, "Rg", "Mt", "Ds"), nil)

	assert.Equal(t, BondUnknown, a.BondType)
	assert.Equal(t, LikelihoodPossible, a.Likelihood)
	require.Len(t, a.Candidates, 1)
	assert.Equal(t, "MtDsRg", a.Candidates[0].Formula)
	assert.Empty(t, a.Candidates[0].OxidationAssignment)
	assert.Nil(t, a.ElectronegativityDifference)
	assert.Contains(t, a.Rationale, "Meitnerium, Darmstadtium and Roentgenium")
}

// ─────────────────────────────────────────────────────────────────────────────
// Short-circuits
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_NobleGasAbsorbs(t *testing.T) {
	for _, gas := range []string{"He", "Ne", "Ar", "Kr", "Xe", "Rn"} {
		for _, others := range [][]string{{"O"}, {"Na", "Cl"}, {"F"}} {
			a := Analyze(mustElements(t, append([]string{gas}, others...)...), nil)
			assert.Equal(t, LikelihoodUnlikely, a.Likelihood, gas)
			assert.Equal(t, BondNone, a.BondType, gas)
		}
	}
}

func TestAnalyze_NobleGasPlural(t *testing.T) {
	a := Analyze(mustElements(t, "Ne", "He"), nil)
	assert.Equal(t, "Helium and Neon are noble gases with complete valence shells and do not readily form compounds.", a.Rationale)
}

func TestAnalyze_NobleGasUserFormulaKeepsRenderedFormula(t *testing.T) {
	a := Analyze(mustElements(t, "Xe", "F"), []ElementCount{{Symbol: "F", Count: 2}})
	assert.Equal(t, LikelihoodUnlikely, a.Likelihood)
	require.Len(t, a.Candidates, 1)
	assert.Equal(t, "F2Xe", a.Candidates[0].Formula)
}

func TestAnalyze_MissingElectronegativityWinsOverMissingOxidation(t *testing.T) {
	// Copernicium has neither value.
	a := Analyze(mustElements(t, "O", "Cn"), nil)
	assert.Equal(t, BondUnknown, a.BondType)
	assert.Equal(t, LikelihoodPossible, a.Likelihood)
	assert.Equal(t, []string{"OCn"}, a.Formulas())
}

func TestAnalyze_MissingOxidationStates(t *testing.T) {
	custom := []etypes.Element{
		{AtomicNumber: 1, Symbol: "H", Name: "Hydrogen", Category: etypes.CategoryNonmetal, OxidationStates: []int{-1, 0, 1}, Electronegativity: etypes.Float(2.2)},
		{AtomicNumber: 30, Symbol: "Zn", Name: "Zinc", Category: etypes.CategoryTransitionMetal, OxidationStates: []int{0}, Electronegativity: etypes.Float(1.65)},
	}
	a := Analyze(custom, nil)
	assert.Equal(t, LikelihoodUnlikely, a.Likelihood)
	assert.Empty(t, a.Candidates)
	assert.Contains(t, a.Rationale, "No nonzero oxidation states are documented for Zinc")
}

// ─────────────────────────────────────────────────────────────────────────────
// Binary solver
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_BinaryFormulaOrderAndSubscripts(t *testing.T) {
	a := Analyze(mustElements(t, "O", "Al"), nil)
	_, ok := findCandidate(a, "OAl")
	assert.True(t, ok)
	oxide, ok := findCandidate(a, "O3Al2")
	require.True(t, ok, "candidates: %v", a.Formulas())
	assert.Equal(t, map[string]int{"O": -2, "Al": 3}, assignmentOf(oxide))
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	assert.Contains(t, a.Rationale, "Aluminium and oxygen form alumina")
}

func TestAnalyze_BinaryNoOppositeSigns(t *testing.T) {
	a := Analyze(mustElements(t, "Ca", "Ra"), nil)
	assert.Equal(t, LikelihoodUnlikely, a.Likelihood)
	assert.Empty(t, a.Candidates)
	assert.Contains(t, a.Rationale, "no opposite-sign oxidation states")
}

func TestSolvePair_PrefersElectronegativePolarity(t *testing.T) {
	h, o := mustElements(t, "H")[0], mustElements(t, "O")[0]
	got := solvePair(h, o)

	require.Equal(t, []string{"HO", "H2O"}, []string{got[0].Formula, got[1].Formula})
	for _, c := range got {
		assert.Equal(t, 1, assignmentOf(c)["H"], c.Formula)
		assert.Zero(t, c.NetCharge())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Multi-element search
// ─────────────────────────────────────────────────────────────────────────────

func TestPreferredState(t *testing.T) {
	tests := []struct {
		states []int
		want   int
		ok     bool
	}{
		{[]int{-2, -1, 0, 1, 2}, 1, true},
		{[]int{-1, 0}, -1, true},
		{[]int{2, 6}, 2, true},
		{[]int{-4, -3, 3}, 3, true},
		{[]int{0}, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := preferredState(tt.states)
		assert.Equal(t, tt.ok, ok, tt.states)
		assert.Equal(t, tt.want, got, tt.states)
	}
}

func TestAnalyze_MultiPrimarySearch(t *testing.T) {
	// F -1, Ra +2, Ac +3: every solution of 2·Ra + 3·Ac = F within bounds.
	a := Analyze(mustElements(t, "Ac", "F", "Ra"), nil)

	assert.Equal(t, LikelihoodPossible, a.Likelihood)
	assert.Equal(t, BondMixed, a.BondType)
	require.Len(t, a.Candidates, 18)
	assert.Equal(t, "F2Ra", a.Candidates[0].Formula)
	assert.Equal(t, "F3Ac", a.Candidates[1].Formula)
	assert.Equal(t, "F4Ra2", a.Candidates[2].Formula)
	assert.Equal(t, "F5RaAc", a.Candidates[3].Formula)
	assert.Contains(t, a.Rationale, "Mixed ionic and covalent character")
	for _, c := range a.Candidates {
		assert.Zero(t, c.NetCharge(), c.Formula)
		assert.GreaterOrEqual(t, len(c.OxidationAssignment), 2)
	}
}

func TestAnalyze_MultiTooManyStoichiometries(t *testing.T) {
	a := Analyze(mustElements(t, "H", "F", "Na"), nil)

	assert.Len(t, a.Candidates, MaxSurfacedCandidates)
	assert.Contains(t, a.Rationale, "50 charge-balanced stoichiometries")
	// HF is among the surfaced candidates, which is enough for the registry.
	_, ok := findCandidate(a, "HF")
	assert.True(t, ok)
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	assert.Contains(t, a.Rationale, "HF is hydrogen fluoride")
}

func TestAnalyze_MultiWithoutRegistryStaysPossible(t *testing.T) {
	a := Analyze(mustElements(t, "Ra", "F", "Fr"), nil)
	assert.Equal(t, LikelihoodPossible, a.Likelihood)
	assert.NotEmpty(t, a.Candidates)
}

func TestAnalyze_MultiFallbackIsPairwise(t *testing.T) {
	// Preferred states of C, N and O are all +1.
	a := Analyze(mustElements(t, "O", "N", "C"), nil)

	assert.Equal(t, LikelihoodPossible, a.Likelihood)
	assert.Len(t, a.Candidates, MaxFallbackFormulas)
	assert.Contains(t, a.Rationale, "only pairwise formulas")
	assert.Contains(t, a.Rationale, "leans covalent")
	for _, c := range a.Candidates {
		assert.Len(t, c.OxidationAssignment, 2, c.Formula)
		assert.Zero(t, c.NetCharge(), c.Formula)
	}
}

func TestAnalyze_MultiRegistryRaisesToLikely(t *testing.T) {
	a := Analyze(mustElements(t, "Ca", "C", "O"), nil)
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	assert.Contains(t, a.Rationale, "calcium carbonate")
}

func TestAnalyze_ExhaustiveStrategy(t *testing.T) {
	elements := mustElements(t, "Ca", "C", "O")
	preferred := NewAnalyzer().Analyze(elements, nil)
	exhaustive := NewAnalyzer(WithStrategy(StrategyExhaustive)).Analyze(elements, nil)

	assert.Contains(t, preferred.Rationale, "only pairwise formulas")
	assert.NotContains(t, exhaustive.Rationale, "only pairwise formulas")
	assert.LessOrEqual(t, len(exhaustive.Candidates), MaxSurfacedCandidates)

	seen := map[string]bool{}
	for _, c := range exhaustive.Candidates {
		assert.False(t, seen[c.Formula], "duplicate %s", c.Formula)
		seen[c.Formula] = true
		assert.Zero(t, c.NetCharge(), c.Formula)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyPreferred, s)

	s, err = ParseStrategy("Exhaustive")
	require.NoError(t, err)
	assert.Equal(t, StrategyExhaustive, s)

	_, err = ParseStrategy("greedy")
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// User formulas
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_UserFormulaUsesAnyListedState(t *testing.T) {
	a := Analyze(mustElements(t, "Na", "Cl"), []ElementCount{{Symbol: "Na", Count: 2}, {Symbol: "Cl", Count: 1}})

	require.Len(t, a.Candidates, 1)
	assert.Equal(t, "Na2Cl", a.Candidates[0].Formula)
	assert.Equal(t, map[string]int{"Na": -1, "Cl": 2}, assignmentOf(a.Candidates[0]))
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
}

func TestAnalyze_UserFormulaUnbalancedIsNeverUnlikely(t *testing.T) {
	// Fluorine only takes -1, so LiF3 cannot balance with Li at most +1.
	b := Analyze(mustElements(t, "Li", "F"), []ElementCount{{Symbol: "F", Count: 3}})
	assert.True(t, b.UserSpecified)
	assert.Equal(t, LikelihoodPossible, b.Likelihood)
	require.Len(t, b.Candidates, 1)
	assert.Equal(t, "LiF3", b.Candidates[0].Formula)
	assert.Empty(t, b.Candidates[0].OxidationAssignment)
	assert.Contains(t, b.Rationale, "No combination of documented oxidation states balances")
}

func TestAnalyze_UserFormulaWeakSeparation(t *testing.T) {
	// C and S differ by 0.03.
	a := Analyze(mustElements(t, "C", "S"), []ElementCount{{Symbol: "C", Count: 1}, {Symbol: "S", Count: 2}})
	assert.Equal(t, BondNonpolarCovalent, a.BondType)
	assert.Equal(t, LikelihoodPossible, a.Likelihood)
	require.Len(t, a.Candidates, 1)
	assert.Zero(t, a.Candidates[0].NetCharge())
}

func TestAnalyze_UserFormulaMissingCountDefaultsToOne(t *testing.T) {
	a := Analyze(mustElements(t, "O", "H"), []ElementCount{{Symbol: "H", Count: 2}})
	require.Len(t, a.Candidates, 1)
	assert.Equal(t, "H2O", a.Candidates[0].Formula)
	assert.Equal(t, map[string]int{"H": 1, "O": -2}, assignmentOf(a.Candidates[0]))
	assert.Equal(t, LikelihoodLikely, a.Likelihood)
	assert.Contains(t, a.Rationale, "H2O is water")
}

func TestBalance_IsOrderIndependent(t *testing.T) {
	elements := sortElements(mustElements(t, "Ca", "C", "O"))
	counts := []int{1, 3, 1} // C, O, Ca
	got, ok := balance(elements, counts)
	require.True(t, ok)

	total := 0
	for _, term := range got {
		total += term.OxidationState * term.Count
	}
	assert.Zero(t, total)
	assert.Equal(t, "C", got[0].Symbol)
	assert.Equal(t, -2, got[1].OxidationState)
}

// ─────────────────────────────────────────────────────────────────────────────
// Properties
// ─────────────────────────────────────────────────────────────────────────────

func TestAnalyze_PermutationIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sets := [][]string{
		{"H", "O"},
		{"Na", "Cl"},
		{"Ca", "C", "O"},
		{"Ac", "F", "Ra"},
		{"Fe", "O", "S", "H"},
	}
	for _, set := range sets {
		elements := mustElements(t, set...)
		want := Analyze(elements, nil)
		for i := 0; i < 5; i++ {
			shuffled := append([]etypes.Element(nil), elements...)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			assert.Equal(t, want, Analyze(shuffled, nil), set)
		}
	}
}

func TestAnalyze_InvariantsAcrossDataset(t *testing.T) {
	all, err := testRepo.List(context.Background())
	require.NoError(t, err)
	subset := all[:40]

	check := func(a CompoundAnalysis) {
		assert.True(t, a.Likelihood.IsValid())
		assert.True(t, a.BondType.IsValid())
		assert.LessOrEqual(t, len(a.Candidates), MaxSurfacedCandidates)
		for i := 1; i < len(a.Elements); i++ {
			assert.Less(t, a.Elements[i-1].AtomicNumber, a.Elements[i].AtomicNumber)
		}
		for _, c := range a.Candidates {
			assert.Zero(t, c.NetCharge(), c.Formula)
		}
	}

	for i := 0; i < len(subset); i++ {
		for j := i + 1; j < len(subset); j++ {
			check(Analyze([]etypes.Element{subset[i], subset[j]}, nil))
		}
	}
	for i := 0; i < 12; i++ {
		for j := i + 1; j < 12; j++ {
			for k := j + 1; k < 12; k++ {
				check(Analyze([]etypes.Element{subset[i], subset[j], subset[k]}, nil))
			}
		}
	}
}

func TestAnalyze_RegistryNeverLowers(t *testing.T) {
	for _, set := range [][]string{{"H", "O"}, {"Na", "Cl"}, {"C", "O"}, {"Fe", "O"}, {"H", "N", "O"}} {
		elements := mustElements(t, set...)
		sorted := sortElements(elements)
		bond := classifyBond(sorted)
		var structural outcome
		if len(sorted) == 2 {
			structural = solveBinary(sorted, bond)
		} else {
			structural = searchMulti(sorted, bond, StrategyPreferred)
		}
		final := Analyze(elements, nil)
		assert.True(t, final.Likelihood.AtLeast(structural.likelihood), set)
	}
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	elements := mustElements(t, "O", "H")
	Analyze(elements, nil)
	assert.Equal(t, []string{"O", "H"}, symbolsOf(elements))
}
