package compound

import (
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Known compounds
// ---------------------------------------------------------------------------

// elementSetNotes is keyed by element symbols joined with "-" in alphabetical
// order, so "H-O" also covers the O-H lookup.
var elementSetNotes = map[string]string{
	"H-O":    "Hydrogen and oxygen form water (H2O) and hydrogen peroxide (H2O2).",
	"Cl-Na":  "Sodium and chlorine form sodium chloride (NaCl), common table salt.",
	"C-H":    "Carbon and hydrogen form the hydrocarbons, starting with methane (CH4).",
	"C-O":    "Carbon and oxygen form carbon dioxide (CO2) and carbon monoxide (CO).",
	"H-N":    "Nitrogen and hydrogen form ammonia (NH3).",
	"Cl-H":   "Hydrogen and chlorine form hydrogen chloride (HCl).",
	"F-H":    "Hydrogen and fluorine form hydrogen fluoride (HF).",
	"H-S":    "Hydrogen and sulfur form hydrogen sulfide (H2S).",
	"Cl-K":   "Potassium and chlorine form potassium chloride (KCl).",
	"Ca-O":   "Calcium and oxygen form quicklime (CaO).",
	"Mg-O":   "Magnesium and oxygen form magnesium oxide (MgO).",
	"Fe-O":   "Iron and oxygen form the iron oxides FeO, Fe2O3 and Fe3O4.",
	"Al-O":   "Aluminium and oxygen form alumina (Al2O3).",
	"O-Si":   "Silicon and oxygen form silica (SiO2).",
	"F-Li":   "Lithium and fluorine form lithium fluoride (LiF).",
	"Ag-Cl":  "Silver and chlorine form silver chloride (AgCl).",
	"Cu-O":   "Copper and oxygen form copper(I) and copper(II) oxides.",
	"O-Zn":   "Zinc and oxygen form zinc oxide (ZnO).",
	"O-Ti":   "Titanium and oxygen form titanium dioxide (TiO2).",
	"Ca-Cl":  "Calcium and chlorine form calcium chloride (CaCl2).",
	"C-Ca-O": "Calcium, carbon and oxygen form calcium carbonate (CaCO3), the mineral calcite.",
	"H-O-S":  "Hydrogen, sulfur and oxygen form sulfuric acid (H2SO4).",
	"H-N-O":  "Hydrogen, nitrogen and oxygen form nitric acid (HNO3).",
	"H-Na-O": "Sodium, oxygen and hydrogen form sodium hydroxide (NaOH).",
}

// formulaNotes is keyed by written formula; lookups go through composition
// so element order in the key does not matter.
var formulaNotes = map[string]string{
	"H2O":     "H2O is water, the most abundant compound on Earth's surface.",
	"H2O2":    "H2O2 is hydrogen peroxide, a well-characterized oxidizer.",
	"NaCl":    "NaCl is sodium chloride, a textbook ionic crystal.",
	"CH4":     "CH4 is methane, the simplest hydrocarbon.",
	"CO2":     "CO2 is carbon dioxide.",
	"CO":      "CO is carbon monoxide.",
	"NH3":     "NH3 is ammonia.",
	"HCl":     "HCl is hydrogen chloride.",
	"HF":      "HF is hydrogen fluoride.",
	"H2S":     "H2S is hydrogen sulfide.",
	"KCl":     "KCl is potassium chloride.",
	"CaO":     "CaO is calcium oxide (quicklime).",
	"MgO":     "MgO is magnesium oxide.",
	"Fe2O3":   "Fe2O3 is iron(III) oxide, the main component of rust.",
	"Al2O3":   "Al2O3 is aluminium oxide (corundum).",
	"SiO2":    "SiO2 is silicon dioxide (quartz).",
	"LiF":     "LiF is lithium fluoride.",
	"CaCl2":   "CaCl2 is calcium chloride.",
	"CaCO3":   "CaCO3 is calcium carbonate, found as limestone and calcite.",
	"H2SO4":   "H2SO4 is sulfuric acid.",
	"HNO3":    "HNO3 is nitric acid.",
	"NaOH":    "NaOH is sodium hydroxide (lye).",
	"NaHCO3":  "NaHCO3 is sodium bicarbonate (baking soda).",
	"C6H12O6": "C6H12O6 is glucose.",
	"C2H6O":   "C2H6O is ethanol.",
}

// formulaIndex maps composition keys to notes. Built once at init and never
// written afterward.
var formulaIndex = func() map[string]string {
	idx := make(map[string]string, len(formulaNotes))
	for f, note := range formulaNotes {
		idx[mustComposition(f)] = note
	}
	return idx
}()

// elementSetKey joins symbols alphabetically with "-".
func elementSetKey(symbols []string) string {
	s := append([]string(nil), symbols...)
	sort.Strings(s)
	return strings.Join(s, "-")
}

// LookupElementSet returns the note for an unordered set of symbols.
func LookupElementSet(symbols ...string) (string, bool) {
	note, ok := elementSetNotes[elementSetKey(symbols)]
	return note, ok
}

// LookupFormula returns the note for a formula written in any element order.
func LookupFormula(formula string) (string, bool) {
	terms, err := ParseFormula(formula)
	if err != nil {
		return "", false
	}
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t.Symbol] = t.Count
	}
	return lookupComposition(counts)
}

func lookupComposition(counts map[string]int) (string, bool) {
	note, ok := formulaIndex[compositionKey(counts)]
	return note, ok
}

// candidateCounts turns an assignment into symbol counts.
func candidateCounts(c CompoundCandidate) map[string]int {
	counts := make(map[string]int, len(c.OxidationAssignment))
	for _, t := range c.OxidationAssignment {
		counts[t.Symbol] += t.Count
	}
	return counts
}
