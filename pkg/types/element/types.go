// Package element defines the periodic-table record consumed by the compound
// engine and served by the element API. Records are read-only once loaded.
package element

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Category
// ─────────────────────────────────────────────────────────────────────────────

// Category is the closed set of periodic-table families.
type Category string

const (
	CategoryAlkaliMetal         Category = "alkali-metal"
	CategoryAlkalineEarthMetal  Category = "alkaline-earth-metal"
	CategoryTransitionMetal     Category = "transition-metal"
	CategoryPostTransitionMetal Category = "post-transition-metal"
	CategoryMetalloid           Category = "metalloid"
	CategoryNonmetal            Category = "nonmetal"
	CategoryHalogen             Category = "halogen"
	CategoryNobleGas            Category = "noble-gas"
	CategoryLanthanide          Category = "lanthanide"
	CategoryActinide            Category = "actinide"
	CategoryUnknown             Category = "unknown"
)

var allCategories = []Category{
	CategoryAlkaliMetal,
	CategoryAlkalineEarthMetal,
	CategoryTransitionMetal,
	CategoryPostTransitionMetal,
	CategoryMetalloid,
	CategoryNonmetal,
	CategoryHalogen,
	CategoryNobleGas,
	CategoryLanthanide,
	CategoryActinide,
	CategoryUnknown,
}

// Categories returns every valid category in display order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func (c Category) String() string { return string(c) }

// IsValid reports whether c is one of the declared categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryAlkaliMetal, CategoryAlkalineEarthMetal, CategoryTransitionMetal,
		CategoryPostTransitionMetal, CategoryMetalloid, CategoryNonmetal,
		CategoryHalogen, CategoryNobleGas, CategoryLanthanide, CategoryActinide,
		CategoryUnknown:
		return true
	default:
		return false
	}
}

// ParseCategory accepts the canonical names plus space or underscore separated
// variants ("Noble Gas", "noble_gas").
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	c := Category(norm)
	if !c.IsValid() {
		return "", fmt.Errorf("element: unknown category %q", s)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Element
// ─────────────────────────────────────────────────────────────────────────────

// Element is a single periodic-table record.
//
// OxidationStates is ordered as published and may contain 0 or be empty.
// Electronegativity is on the Pauling scale and is nil where no value is
// documented, which includes every noble gas.
type Element struct {
	AtomicNumber      int      `json:"atomic_number"`
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Category          Category `json:"category"`
	OxidationStates   []int    `json:"oxidation_states"`
	Electronegativity *float64 `json:"electronegativity,omitempty"`
}

// IsNobleGas reports whether the element belongs to group 18.
func (e Element) IsNobleGas() bool {
	return e.Category == CategoryNobleGas
}

// HasElectronegativity reports whether a Pauling value is known.
func (e Element) HasElectronegativity() bool {
	return e.Electronegativity != nil
}

// NonzeroOxidationStates returns the listed states with 0 removed, in order.
func (e Element) NonzeroOxidationStates() []int {
	out := make([]int, 0, len(e.OxidationStates))
	for _, ox := range e.OxidationStates {
		if ox != 0 {
			out = append(out, ox)
		}
	}
	return out
}

// Validate checks the fields the engine relies on.
func (e Element) Validate() error {
	if e.AtomicNumber < 1 {
		return fmt.Errorf("element: atomic number must be >= 1, got %d", e.AtomicNumber)
	}
	if !IsWellFormedSymbol(e.Symbol) {
		return fmt.Errorf("element: malformed symbol %q", e.Symbol)
	}
	if e.Name == "" {
		return fmt.Errorf("element: %s has no name", e.Symbol)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("element: %s has unknown category %q", e.Symbol, e.Category)
	}
	return nil
}

// IsWellFormedSymbol reports whether s looks like an element symbol: one
// upper-case letter followed by up to two lower-case letters.
func IsWellFormedSymbol(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// NormalizeSymbol converts user input such as "na", "NA" or " Na " into the
// canonical capitalization.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Float returns a pointer to v; handy for building records in code.
func Float(v float64) *float64 {
	return &v
}
