package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompoundForge/internal/domain/element"
	pkgerrors "github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

var elementCols = []string{"atomic_number", "symbol", "name", "category", "oxidation_states", "electronegativity"}

func newElementRepo(t *testing.T) (*ElementRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewElementRepository(db, nil, nil), mock
}

func TestElementRepository_FindBySymbol(t *testing.T) {
	repo, mock := newElementRepo(t)
	mock.ExpectQuery(`FROM elements WHERE LOWER\(symbol\) = LOWER\(\$1\)`).
		WithArgs("na").
		WillReturnRows(sqlmock.NewRows(elementCols).AddRow(11, "Na", "Sodium", "alkali-metal", "{-1,0,1}", 0.93))

	e, err := repo.FindBySymbol(context.Background(), " na ")
	require.NoError(t, err)
	assert.Equal(t, "Na", e.Symbol)
	assert.Equal(t, etypes.CategoryAlkaliMetal, e.Category)
	assert.Equal(t, []int{-1, 0, 1}, e.OxidationStates)
	require.NotNil(t, e.Electronegativity)
	assert.InDelta(t, 0.93, *e.Electronegativity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepository_FindBySymbol_NullElectronegativity(t *testing.T) {
	repo, mock := newElementRepo(t)
	mock.ExpectQuery(`FROM elements`).
		WithArgs("He").
		WillReturnRows(sqlmock.NewRows(elementCols).AddRow(2, "He", "Helium", "noble-gas", "{}", nil))

	e, err := repo.FindBySymbol(context.Background(), "He")
	require.NoError(t, err)
	assert.Nil(t, e.Electronegativity)
	assert.Empty(t, e.OxidationStates)
	assert.True(t, e.IsNobleGas())
}

func TestElementRepository_FindBySymbol_Errors(t *testing.T) {
	repo, mock := newElementRepo(t)

	_, err := repo.FindBySymbol(context.Background(), "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeElementInvalidSymbol))

	mock.ExpectQuery(`FROM elements`).WithArgs("Xx").WillReturnRows(sqlmock.NewRows(elementCols))
	_, err = repo.FindBySymbol(context.Background(), "Xx")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeElementNotFound))

	mock.ExpectQuery(`FROM elements`).WithArgs("O").WillReturnError(errors.New("conn reset"))
	_, err = repo.FindBySymbol(context.Background(), "O")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepository_FindByNumber(t *testing.T) {
	repo, mock := newElementRepo(t)
	mock.ExpectQuery(`WHERE atomic_number = \$1`).WithArgs(8).
		WillReturnRows(sqlmock.NewRows(elementCols).AddRow(8, "O", "Oxygen", "nonmetal", "{-2,-1,0,1,2}", 3.44))
	mock.ExpectQuery(`WHERE atomic_number = \$1`).WithArgs(200).
		WillReturnRows(sqlmock.NewRows(elementCols))

	e, err := repo.FindByNumber(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "Oxygen", e.Name)

	_, err = repo.FindByNumber(context.Background(), 200)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepository_ListAndSearch(t *testing.T) {
	repo, mock := newElementRepo(t)
	mock.ExpectQuery(`ORDER BY atomic_number`).
		WillReturnRows(sqlmock.NewRows(elementCols).
			AddRow(1, "H", "Hydrogen", "nonmetal", "{-1,0,1}", 2.20).
			AddRow(2, "He", "Helium", "noble-gas", "{}", nil))
	mock.ExpectQuery(`LIKE \$1`).WithArgs(`c\%%`).
		WillReturnRows(sqlmock.NewRows(elementCols))

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "He", all[1].Symbol)

	none, err := repo.Search(context.Background(), "C%")
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := repo.Search(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepository_UnknownCategoryFallsBack(t *testing.T) {
	repo, mock := newElementRepo(t)
	mock.ExpectQuery(`ORDER BY atomic_number`).
		WillReturnRows(sqlmock.NewRows(elementCols).AddRow(113, "Nh", "Nihonium", "superheavy", "{}", nil))

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, etypes.CategoryUnknown, all[0].Category)
}

func TestElementRepository_Seed(t *testing.T) {
	repo, mock := newElementRepo(t)
	data := element.Dataset()

	mock.ExpectBegin()
	for range data {
		mock.ExpectExec(`INSERT INTO elements`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	n, err := repo.Seed(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepository_Seed_RollsBackOnFailure(t *testing.T) {
	repo, mock := newElementRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO elements`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Seed(context.Background(), element.Dataset())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepository_Seed_RejectsInvalidDataset(t *testing.T) {
	repo, _ := newElementRepo(t)
	dup := element.Dataset()[:2]
	dup[1].Symbol = dup[0].Symbol

	_, err := repo.Seed(context.Background(), dup)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeElementDatasetInvalid))
}

func TestPrefixPattern(t *testing.T) {
	assert.Equal(t, "ca%", prefixPattern("Ca"))
	assert.Equal(t, `a\_b\%%`, prefixPattern("A_B%"))
}
