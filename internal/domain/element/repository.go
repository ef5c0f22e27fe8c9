// Package element owns the periodic-table records the compound engine
// consumes. It defines the read-only Repository contract, an in-memory
// implementation over the embedded dataset, and dataset validation.
package element

import (
	"context"
	"sort"
	"strings"

	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// Repository is the read-only element source.
type Repository interface {
	// FindBySymbol resolves a symbol case-insensitively. Returns
	// errors.ErrCodeElementNotFound when the symbol is unknown.
	FindBySymbol(ctx context.Context, symbol string) (*etypes.Element, error)

	// FindByNumber returns errors.ErrCodeElementNotFound for numbers
	// outside the loaded table.
	FindByNumber(ctx context.Context, atomicNumber int) (*etypes.Element, error)

	// List returns all elements ordered by atomic number.
	List(ctx context.Context) ([]etypes.Element, error)

	// Search returns elements whose symbol or name starts with query,
	// case-insensitively, ordered by atomic number. An empty query
	// matches nothing.
	Search(ctx context.Context, query string) ([]etypes.Element, error)
}

// MemoryRepository serves a fixed element slice. It is safe for concurrent
// use because nothing mutates it after construction.
type MemoryRepository struct {
	ordered  []etypes.Element
	bySymbol map[string]int
	byNumber map[int]int
}

// NewMemoryRepository builds a repository over the embedded periodic table.
func NewMemoryRepository() *MemoryRepository {
	repo, err := NewMemoryRepositoryFrom(Dataset())
	if err != nil {
		// The embedded table is covered by tests; reaching this is a build defect.
		panic(err)
	}
	return repo
}

// NewMemoryRepositoryFrom validates elements and indexes them.
func NewMemoryRepositoryFrom(elements []etypes.Element) (*MemoryRepository, error) {
	if err := ValidateDataset(elements); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeElementDatasetInvalid, "invalid element dataset")
	}
	ordered := make([]etypes.Element, len(elements))
	copy(ordered, elements)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].AtomicNumber < ordered[j].AtomicNumber })

	r := &MemoryRepository{
		ordered:  ordered,
		bySymbol: make(map[string]int, len(ordered)),
		byNumber: make(map[int]int, len(ordered)),
	}
	for i, e := range ordered {
		r.bySymbol[strings.ToLower(e.Symbol)] = i
		r.byNumber[e.AtomicNumber] = i
	}
	return r, nil
}

func (r *MemoryRepository) FindBySymbol(_ context.Context, symbol string) (*etypes.Element, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	if key == "" {
		return nil, errors.New(errors.ErrCodeElementInvalidSymbol, "element symbol must not be empty")
	}
	idx, ok := r.bySymbol[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeElementNotFound, "element not found").WithDetail("symbol=" + symbol)
	}
	e := clone(r.ordered[idx])
	return &e, nil
}

func (r *MemoryRepository) FindByNumber(_ context.Context, atomicNumber int) (*etypes.Element, error) {
	idx, ok := r.byNumber[atomicNumber]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeElementNotFound, "no element with atomic number %d", atomicNumber)
	}
	e := clone(r.ordered[idx])
	return &e, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]etypes.Element, error) {
	out := make([]etypes.Element, len(r.ordered))
	for i, e := range r.ordered {
		out[i] = clone(e)
	}
	return out, nil
}

func (r *MemoryRepository) Search(_ context.Context, query string) ([]etypes.Element, error) {
	return Filter(r.ordered, query), nil
}

// Filter applies the Search matching rule to an ordered slice.
func Filter(elements []etypes.Element, query string) []etypes.Element {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []etypes.Element{}
	}
	out := make([]etypes.Element, 0)
	for _, e := range elements {
		if strings.HasPrefix(strings.ToLower(e.Symbol), q) || strings.HasPrefix(strings.ToLower(e.Name), q) {
			out = append(out, clone(e))
		}
	}
	return out
}

// clone detaches the slice and pointer fields so callers cannot alter the
// repository's copy.
func clone(e etypes.Element) etypes.Element {
	e.OxidationStates = append([]int(nil), e.OxidationStates...)
	if e.Electronegativity != nil {
		e.Electronegativity = etypes.Float(*e.Electronegativity)
	}
	return e
}

var _ Repository = (*MemoryRepository)(nil)
