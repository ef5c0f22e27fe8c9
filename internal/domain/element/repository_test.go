package element

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

func TestDataset_IsCompleteAndValid(t *testing.T) {
	ds := Dataset()
	require.Len(t, ds, 118)
	require.NoError(t, ValidateDataset(ds))
	for i, e := range ds {
		assert.Equal(t, i+1, e.AtomicNumber, e.Symbol)
	}
}

func TestDataset_NobleGasesHaveNoElectronegativity(t *testing.T) {
	for _, e := range Dataset() {
		if e.IsNobleGas() {
			assert.Nil(t, e.Electronegativity, e.Symbol)
		}
	}
}

func TestDataset_ReferenceValues(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	tests := []struct {
		symbol string
		ox     []int
		en     float64
	}{
		{"H", []int{-1, 0, 1}, 2.20},
		{"O", []int{-2, -1, 0, 1, 2}, 3.44},
		{"Na", []int{-1, 0, 1}, 0.93},
		{"C", []int{-4, -3, -2, -1, 0, 1, 2, 3, 4}, 2.55},
	}
	for _, tt := range tests {
		e, err := repo.FindBySymbol(ctx, tt.symbol)
		require.NoError(t, err)
		assert.Equal(t, tt.ox, e.OxidationStates, tt.symbol)
		require.NotNil(t, e.Electronegativity)
		assert.InDelta(t, tt.en, *e.Electronegativity, 1e-9)
	}

	cl, err := repo.FindBySymbol(ctx, "Cl")
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 0, 1}, cl.OxidationStates[:3])
	assert.InDelta(t, 3.16, *cl.Electronegativity, 1e-9)
}

func TestElectronegativity_Lookup(t *testing.T) {
	v, ok := Electronegativity(9)
	assert.True(t, ok)
	assert.InDelta(t, 3.98, v, 1e-9)

	_, ok = Electronegativity(2)
	assert.False(t, ok)
}

func TestValidateDataset_Duplicates(t *testing.T) {
	h := etypes.Element{AtomicNumber: 1, Symbol: "H", Name: "Hydrogen", Category: etypes.CategoryNonmetal}
	dupNumber := etypes.Element{AtomicNumber: 1, Symbol: "D", Name: "Deuterium", Category: etypes.CategoryNonmetal}
	dupSymbol := etypes.Element{AtomicNumber: 2, Symbol: "H", Name: "Other", Category: etypes.CategoryNonmetal}

	assert.Error(t, ValidateDataset([]etypes.Element{h, dupNumber}))
	assert.Error(t, ValidateDataset([]etypes.Element{h, dupSymbol}))
}

func TestValidateDataset_NobleGasWithElectronegativity(t *testing.T) {
	bad := etypes.Element{AtomicNumber: 2, Symbol: "He", Name: "Helium", Category: etypes.CategoryNobleGas, Electronegativity: etypes.Float(4.1)}
	assert.Error(t, ValidateDataset([]etypes.Element{bad}))
}

func TestMemoryRepository_FindBySymbol(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	na, err := repo.FindBySymbol(ctx, "nA")
	require.NoError(t, err)
	assert.Equal(t, "Na", na.Symbol)
	assert.Equal(t, 11, na.AtomicNumber)

	_, err = repo.FindBySymbol(ctx, "Xx")
	assert.True(t, errors.IsCode(err, errors.ErrCodeElementNotFound))

	_, err = repo.FindBySymbol(ctx, " ")
	assert.True(t, errors.IsCode(err, errors.ErrCodeElementInvalidSymbol))
}

func TestMemoryRepository_ReturnsDetachedCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	o, err := repo.FindBySymbol(ctx, "O")
	require.NoError(t, err)
	o.OxidationStates[0] = 99
	*o.Electronegativity = 0

	again, err := repo.FindBySymbol(ctx, "O")
	require.NoError(t, err)
	assert.Equal(t, -2, again.OxidationStates[0])
	assert.InDelta(t, 3.44, *again.Electronegativity, 1e-9)
}

func TestMemoryRepository_FindByNumber(t *testing.T) {
	repo := NewMemoryRepository()

	fe, err := repo.FindByNumber(context.Background(), 26)
	require.NoError(t, err)
	assert.Equal(t, "Fe", fe.Symbol)

	_, err = repo.FindByNumber(context.Background(), 119)
	assert.True(t, errors.IsNotFound(err))
}

func TestMemoryRepository_List(t *testing.T) {
	list, err := NewMemoryRepository().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 118)
	assert.Equal(t, "H", list[0].Symbol)
	assert.Equal(t, "Og", list[117].Symbol)
}

func TestMemoryRepository_Search(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	got, err := repo.Search(ctx, "ch")
	require.NoError(t, err)
	symbols := make([]string, 0, len(got))
	for _, e := range got {
		symbols = append(symbols, e.Symbol)
	}
	assert.Equal(t, []string{"Cl", "Cr"}, symbols)

	got, err = repo.Search(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, "C", got[0].Symbol)

	got, err = repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewMemoryRepositoryFrom_RejectsInvalid(t *testing.T) {
	_, err := NewMemoryRepositoryFrom([]etypes.Element{{AtomicNumber: 0, Symbol: "H", Name: "Hydrogen"}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeElementDatasetInvalid))
}
