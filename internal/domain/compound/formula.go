package compound

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// term is a (symbol, count) pair in rendering order.
type term struct {
	symbol string
	count  int
}

// render writes terms in the given order, skipping zero counts and eliding
// a subscript of 1.
func render(terms []term) string {
	var sb strings.Builder
	for _, t := range terms {
		if t.count <= 0 {
			continue
		}
		sb.WriteString(t.symbol)
		if t.count > 1 {
			sb.WriteString(strconv.Itoa(t.count))
		}
	}
	return sb.String()
}

// sortElements returns a copy of elements ordered by ascending atomic number.
func sortElements(elements []etypes.Element) []etypes.Element {
	out := make([]etypes.Element, len(elements))
	copy(out, elements)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AtomicNumber < out[j].AtomicNumber })
	return out
}

// CanonicalFormula renders counts over elements in ascending atomic-number
// order. Elements without an entry in counts are omitted.
func CanonicalFormula(elements []etypes.Element, counts map[string]int) string {
	sorted := sortElements(elements)
	terms := make([]term, 0, len(sorted))
	for _, e := range sorted {
		terms = append(terms, term{symbol: e.Symbol, count: counts[e.Symbol]})
	}
	return render(terms)
}

// compositionKey identifies a formula independent of element order, so that
// "CaCO3" and "CO3Ca" share a key.
func compositionKey(counts map[string]int) string {
	symbols := make([]string, 0, len(counts))
	for s, n := range counts {
		if n > 0 {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)
	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(s)
		sb.WriteString(strconv.Itoa(counts[s]))
	}
	return sb.String()
}

// FormulaTerm is a parsed (symbol, count) pair.
type FormulaTerm struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// ParseFormula splits a flat formula such as "CaCO3" into terms, merging
// repeated symbols in order of first appearance. Groups in parentheses and
// hydrate dots are not supported.
func ParseFormula(formula string) ([]FormulaTerm, error) {
	s := strings.TrimSpace(formula)
	if s == "" {
		return nil, fmt.Errorf("compound: empty formula")
	}
	index := make(map[string]int)
	var out []FormulaTerm
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		if !unicode.IsUpper(r) {
			return nil, fmt.Errorf("compound: unexpected %q at offset %d in %q", r, i, formula)
		}
		j := i + 1
		for j < len(runes) && unicode.IsLower(runes[j]) {
			j++
		}
		symbol := string(runes[i:j])
		if !etypes.IsWellFormedSymbol(symbol) {
			return nil, fmt.Errorf("compound: malformed symbol %q in %q", symbol, formula)
		}
		k := j
		for k < len(runes) && unicode.IsDigit(runes[k]) {
			k++
		}
		count := 1
		if k > j {
			n, err := strconv.Atoi(string(runes[j:k]))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("compound: invalid count for %s in %q", symbol, formula)
			}
			count = n
		}
		if pos, seen := index[symbol]; seen {
			out[pos].Count += count
		} else {
			index[symbol] = len(out)
			out = append(out, FormulaTerm{Symbol: symbol, Count: count})
		}
		i = k
	}
	return out, nil
}

// mustComposition parses a registry formula; registry data is static so a
// parse failure is a programming error.
func mustComposition(formula string) string {
	terms, err := ParseFormula(formula)
	if err != nil {
		panic(err)
	}
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t.Symbol] = t.Count
	}
	return compositionKey(counts)
}
