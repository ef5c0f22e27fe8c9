package element

import (
	"fmt"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// ---------------------------------------------------------------------------
// Periodic table
// ---------------------------------------------------------------------------

// Short local names keep the table below readable.
const (
	alk = etypes.CategoryAlkaliMetal
	ae  = etypes.CategoryAlkalineEarthMetal
	tm  = etypes.CategoryTransitionMetal
	ptm = etypes.CategoryPostTransitionMetal
	mtd = etypes.CategoryMetalloid
	nm  = etypes.CategoryNonmetal
	hal = etypes.CategoryHalogen
	ng  = etypes.CategoryNobleGas
	lan = etypes.CategoryLanthanide
	act = etypes.CategoryActinide
	unk = etypes.CategoryUnknown
)

type record struct {
	number   int
	symbol   string
	name     string
	category etypes.Category
	ox       []int
}

func ox(states ...int) []int { return states }

// records lists every element with its published oxidation states in
// ascending order.
var records = []record{
	{1, "H", "Hydrogen", nm, ox(-1, 0, 1)},
	{2, "He", "Helium", ng, ox(0)},
	{3, "Li", "Lithium", alk, ox(-1, 0, 1)},
	{4, "Be", "Beryllium", ae, ox(0, 1, 2)},
	{5, "B", "Boron", mtd, ox(-5, -1, 0, 1, 2, 3)},
	{6, "C", "Carbon", nm, ox(-4, -3, -2, -1, 0, 1, 2, 3, 4)},
	{7, "N", "Nitrogen", nm, ox(-3, -2, -1, 0, 1, 2, 3, 4, 5)},
	{8, "O", "Oxygen", nm, ox(-2, -1, 0, 1, 2)},
	{9, "F", "Fluorine", hal, ox(-1, 0)},
	{10, "Ne", "Neon", ng, ox(0)},
	{11, "Na", "Sodium", alk, ox(-1, 0, 1)},
	{12, "Mg", "Magnesium", ae, ox(0, 1, 2)},
	{13, "Al", "Aluminium", ptm, ox(-2, -1, 0, 1, 2, 3)},
	{14, "Si", "Silicon", mtd, ox(-4, -3, -2, -1, 0, 1, 2, 3, 4)},
	{15, "P", "Phosphorus", nm, ox(-3, -2, -1, 0, 1, 2, 3, 4, 5)},
	{16, "S", "Sulfur", nm, ox(-2, -1, 0, 1, 2, 3, 4, 5, 6)},
	{17, "Cl", "Chlorine", hal, ox(-1, 0, 1, 2, 3, 4, 5, 6, 7)},
	{18, "Ar", "Argon", ng, ox(0)},
	{19, "K", "Potassium", alk, ox(-1, 1)},
	{20, "Ca", "Calcium", ae, ox(1, 2)},
	{21, "Sc", "Scandium", tm, ox(0, 1, 2, 3)},
	{22, "Ti", "Titanium", tm, ox(-2, -1, 0, 1, 2, 3, 4)},
	{23, "V", "Vanadium", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5)},
	{24, "Cr", "Chromium", tm, ox(-4, -2, -1, 0, 1, 2, 3, 4, 5, 6)},
	{25, "Mn", "Manganese", tm, ox(-3, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7)},
	{26, "Fe", "Iron", tm, ox(-4, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7)},
	{27, "Co", "Cobalt", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5)},
	{28, "Ni", "Nickel", tm, ox(-2, -1, 0, 1, 2, 3, 4)},
	{29, "Cu", "Copper", tm, ox(-2, 0, 1, 2, 3, 4)},
	{30, "Zn", "Zinc", tm, ox(-2, 0, 1, 2)},
	{31, "Ga", "Gallium", ptm, ox(-5, -4, -3, -2, -1, 1, 2, 3)},
	{32, "Ge", "Germanium", mtd, ox(-4, -3, -2, -1, 0, 1, 2, 3, 4)},
	{33, "As", "Arsenic", mtd, ox(-3, -2, -1, 0, 1, 2, 3, 4, 5)},
	{34, "Se", "Selenium", nm, ox(-2, -1, 1, 2, 3, 4, 5, 6)},
	{35, "Br", "Bromine", hal, ox(-1, 1, 3, 4, 5, 7)},
	{36, "Kr", "Krypton", ng, ox(0, 1, 2)},
	{37, "Rb", "Rubidium", alk, ox(-1, 1)},
	{38, "Sr", "Strontium", ae, ox(1, 2)},
	{39, "Y", "Yttrium", tm, ox(0, 1, 2, 3)},
	{40, "Zr", "Zirconium", tm, ox(-2, 0, 1, 2, 3, 4)},
	{41, "Nb", "Niobium", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5)},
	{42, "Mo", "Molybdenum", tm, ox(-4, -2, -1, 0, 1, 2, 3, 4, 5, 6)},
	{43, "Tc", "Technetium", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5, 6, 7)},
	{44, "Ru", "Ruthenium", tm, ox(-4, -2, 0, 1, 2, 3, 4, 5, 6, 7, 8)},
	{45, "Rh", "Rhodium", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5, 6)},
	{46, "Pd", "Palladium", tm, ox(0, 1, 2, 3, 4)},
	{47, "Ag", "Silver", tm, ox(-2, -1, 1, 2, 3)},
	{48, "Cd", "Cadmium", tm, ox(-2, 1, 2)},
	{49, "In", "Indium", ptm, ox(-5, -2, -1, 1, 2, 3)},
	{50, "Sn", "Tin", ptm, ox(-4, -3, -2, -1, 0, 1, 2, 3, 4)},
	{51, "Sb", "Antimony", mtd, ox(-3, -2, -1, 0, 1, 2, 3, 4, 5)},
	{52, "Te", "Tellurium", mtd, ox(-2, -1, 1, 2, 3, 4, 5, 6)},
	{53, "I", "Iodine", hal, ox(-1, 1, 3, 4, 5, 6, 7)},
	{54, "Xe", "Xenon", ng, ox(0, 2, 4, 6, 8)},
	{55, "Cs", "Caesium", alk, ox(-1, 1)},
	{56, "Ba", "Barium", ae, ox(1, 2)},
	{57, "La", "Lanthanum", lan, ox(0, 1, 2, 3)},
	{58, "Ce", "Cerium", lan, ox(2, 3, 4)},
	{59, "Pr", "Praseodymium", lan, ox(0, 1, 2, 3, 4, 5)},
	{60, "Nd", "Neodymium", lan, ox(0, 2, 3, 4)},
	{61, "Pm", "Promethium", lan, ox(2, 3)},
	{62, "Sm", "Samarium", lan, ox(0, 1, 2, 3)},
	{63, "Eu", "Europium", lan, ox(0, 2, 3)},
	{64, "Gd", "Gadolinium", lan, ox(0, 1, 2, 3)},
	{65, "Tb", "Terbium", lan, ox(0, 1, 2, 3, 4)},
	{66, "Dy", "Dysprosium", lan, ox(0, 1, 2, 3, 4)},
	{67, "Ho", "Holmium", lan, ox(0, 1, 2, 3)},
	{68, "Er", "Erbium", lan, ox(0, 1, 2, 3)},
	{69, "Tm", "Thulium", lan, ox(0, 1, 2, 3)},
	{70, "Yb", "Ytterbium", lan, ox(0, 1, 2, 3)},
	{71, "Lu", "Lutetium", lan, ox(0, 1, 2, 3)},
	{72, "Hf", "Hafnium", tm, ox(-2, 0, 1, 2, 3, 4)},
	{73, "Ta", "Tantalum", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5)},
	{74, "W", "Tungsten", tm, ox(-4, -2, -1, 0, 1, 2, 3, 4, 5, 6)},
	{75, "Re", "Rhenium", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5, 6, 7)},
	{76, "Os", "Osmium", tm, ox(-4, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7, 8)},
	{77, "Ir", "Iridium", tm, ox(-3, -1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)},
	{78, "Pt", "Platinum", tm, ox(-3, -2, -1, 0, 1, 2, 3, 4, 5, 6)},
	{79, "Au", "Gold", tm, ox(-3, -2, -1, 0, 1, 2, 3, 5)},
	{80, "Hg", "Mercury", tm, ox(-2, 1, 2)},
	{81, "Tl", "Thallium", ptm, ox(-5, -2, -1, 1, 2, 3)},
	{82, "Pb", "Lead", ptm, ox(-4, -2, -1, 1, 2, 3, 4)},
	{83, "Bi", "Bismuth", ptm, ox(-3, -2, -1, 1, 2, 3, 4, 5)},
	{84, "Po", "Polonium", ptm, ox(-2, 2, 4, 5, 6)},
	{85, "At", "Astatine", hal, ox(-1, 1, 3, 5, 7)},
	{86, "Rn", "Radon", ng, ox(2, 6)},
	{87, "Fr", "Francium", alk, ox(1)},
	{88, "Ra", "Radium", ae, ox(2)},
	{89, "Ac", "Actinium", act, ox(3)},
	{90, "Th", "Thorium", act, ox(1, 2, 3, 4)},
	{91, "Pa", "Protactinium", act, ox(3, 4, 5)},
	{92, "U", "Uranium", act, ox(1, 2, 3, 4, 5, 6)},
	{93, "Np", "Neptunium", act, ox(2, 3, 4, 5, 6, 7)},
	{94, "Pu", "Plutonium", act, ox(2, 3, 4, 5, 6, 7, 8)},
	{95, "Am", "Americium", act, ox(2, 3, 4, 5, 6, 7)},
	{96, "Cm", "Curium", act, ox(3, 4, 5, 6)},
	{97, "Bk", "Berkelium", act, ox(2, 3, 4, 5)},
	{98, "Cf", "Californium", act, ox(2, 3, 4, 5)},
	{99, "Es", "Einsteinium", act, ox(2, 3, 4)},
	{100, "Fm", "Fermium", act, ox(2, 3)},
	{101, "Md", "Mendelevium", act, ox(2, 3)},
	{102, "No", "Nobelium", act, ox(2, 3)},
	{103, "Lr", "Lawrencium", act, ox(3)},
	{104, "Rf", "Rutherfordium", tm, ox(4)},
	{105, "Db", "Dubnium", tm, ox(5)},
	{106, "Sg", "Seaborgium", tm, ox(0, 6)},
	{107, "Bh", "Bohrium", tm, ox(7)},
	{108, "Hs", "Hassium", tm, ox(8)},
	{109, "Mt", "Meitnerium", unk, nil},
	{110, "Ds", "Darmstadtium", unk, nil},
	{111, "Rg", "Roentgenium", unk, nil},
	{112, "Cn", "Copernicium", unk, nil},
	{113, "Nh", "Nihonium", unk, nil},
	{114, "Fl", "Flerovium", unk, nil},
	{115, "Mc", "Moscovium", unk, nil},
	{116, "Lv", "Livermorium", unk, nil},
	{117, "Ts", "Tennessine", unk, nil},
	{118, "Og", "Oganesson", ng, nil},
}

// paulingByNumber holds documented Pauling electronegativities keyed by
// atomic number. Noble gases and undocumented elements are absent.
var paulingByNumber = map[int]float64{
	1: 2.20, 3: 0.98, 4: 1.57, 5: 2.04, 6: 2.55, 7: 3.04, 8: 3.44, 9: 3.98,
	11: 0.93, 12: 1.31, 13: 1.61, 14: 1.90, 15: 2.19, 16: 2.58, 17: 3.16,
	19: 0.82, 20: 1.00, 21: 1.36, 22: 1.54, 23: 1.63, 24: 1.66, 25: 1.55,
	26: 1.83, 27: 1.88, 28: 1.91, 29: 1.90, 30: 1.65, 31: 1.81, 32: 2.01,
	33: 2.18, 34: 2.55, 35: 2.96,
	37: 0.82, 38: 0.95, 39: 1.22, 40: 1.33, 41: 1.60, 42: 2.16, 43: 1.90,
	44: 2.20, 45: 2.28, 46: 2.20, 47: 1.93, 48: 1.69, 49: 1.78, 50: 1.96,
	51: 2.05, 52: 2.10, 53: 2.66,
	55: 0.79, 56: 0.89, 57: 1.10, 58: 1.12, 59: 1.13, 60: 1.14, 62: 1.17,
	64: 1.20, 66: 1.22, 67: 1.23, 68: 1.24, 69: 1.25, 71: 1.27, 72: 1.30,
	73: 1.50, 74: 2.36, 75: 1.90, 76: 2.20, 77: 2.20, 78: 2.28, 79: 2.54,
	80: 2.00, 81: 1.62, 82: 2.33, 83: 2.02, 84: 2.00, 85: 2.20,
	87: 0.70, 88: 0.90, 89: 1.10, 90: 1.30, 91: 1.50, 92: 1.38, 93: 1.36,
	94: 1.28, 95: 1.30, 96: 1.30, 97: 1.30, 98: 1.30, 99: 1.30, 100: 1.30,
	101: 1.30, 102: 1.30,
}

// Electronegativity returns the Pauling value for an atomic number.
func Electronegativity(atomicNumber int) (float64, bool) {
	v, ok := paulingByNumber[atomicNumber]
	return v, ok
}

// Dataset returns a fresh copy of the full periodic table ordered by atomic
// number. Callers may mutate the result freely.
func Dataset() []etypes.Element {
	out := make([]etypes.Element, 0, len(records))
	for _, r := range records {
		e := etypes.Element{
			AtomicNumber:    r.number,
			Symbol:          r.symbol,
			Name:            r.name,
			Category:        r.category,
			OxidationStates: append([]int(nil), r.ox...),
		}
		if en, ok := paulingByNumber[r.number]; ok {
			e.Electronegativity = etypes.Float(en)
		}
		out = append(out, e)
	}
	return out
}

// ValidateDataset checks that a loaded table is internally consistent:
// every record validates, atomic numbers and symbols are unique, and noble
// gases carry no electronegativity.
func ValidateDataset(elements []etypes.Element) error {
	numbers := make(map[int]string, len(elements))
	symbols := make(map[string]int, len(elements))
	for _, e := range elements {
		if err := e.Validate(); err != nil {
			return err
		}
		if prev, dup := numbers[e.AtomicNumber]; dup {
			return fmt.Errorf("element: atomic number %d used by %s and %s", e.AtomicNumber, prev, e.Symbol)
		}
		if prev, dup := symbols[e.Symbol]; dup {
			return fmt.Errorf("element: symbol %s used by %d and %d", e.Symbol, prev, e.AtomicNumber)
		}
		if e.IsNobleGas() && e.HasElectronegativity() {
			return fmt.Errorf("element: noble gas %s must not carry an electronegativity", e.Symbol)
		}
		numbers[e.AtomicNumber] = e.Symbol
		symbols[e.Symbol] = e.AtomicNumber
	}
	return nil
}
