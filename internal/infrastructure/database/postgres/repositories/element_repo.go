package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/turtacn/CompoundForge/internal/domain/element"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

const elementColumns = `atomic_number, symbol, name, category, oxidation_states, electronegativity`

// ElementRepository reads element records from PostgreSQL.
type ElementRepository struct {
	db      *sql.DB
	logger  logging.Logger
	metrics *prom.AppMetrics
}

func NewElementRepository(db *sql.DB, logger logging.Logger, metrics *prom.AppMetrics) *ElementRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prom.NewNopAppMetrics()
	}
	return &ElementRepository{db: db, logger: logger, metrics: metrics}
}

func (r *ElementRepository) FindBySymbol(ctx context.Context, symbol string) (*etypes.Element, error) {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return nil, errors.New(errors.ErrCodeElementInvalidSymbol, "element symbol must not be empty")
	}
	start := time.Now()
	row := r.db.QueryRowContext(ctx,
		`SELECT `+elementColumns+` FROM elements WHERE LOWER(symbol) = LOWER($1)`, s)
	e, err := scanElement(row)
	prom.RecordDBQuery(r.metrics, "find_element_by_symbol", time.Since(start), ignoreNoRows(err))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeElementNotFound, "element not found").WithDetail("symbol=" + symbol)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load element")
	}
	return e, nil
}

func (r *ElementRepository) FindByNumber(ctx context.Context, atomicNumber int) (*etypes.Element, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx,
		`SELECT `+elementColumns+` FROM elements WHERE atomic_number = $1`, atomicNumber)
	e, err := scanElement(row)
	prom.RecordDBQuery(r.metrics, "find_element_by_number", time.Since(start), ignoreNoRows(err))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf(errors.ErrCodeElementNotFound, "no element with atomic number %d", atomicNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load element")
	}
	return e, nil
}

func (r *ElementRepository) List(ctx context.Context) ([]etypes.Element, error) {
	return r.query(ctx, "list_elements",
		`SELECT `+elementColumns+` FROM elements ORDER BY atomic_number`)
}

// Search matches symbol or name prefixes case-insensitively. An empty query
// matches nothing and skips the database.
func (r *ElementRepository) Search(ctx context.Context, query string) ([]etypes.Element, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []etypes.Element{}, nil
	}
	return r.query(ctx, "search_elements",
		`SELECT `+elementColumns+` FROM elements
		 WHERE LOWER(symbol) LIKE $1 OR LOWER(name) LIKE $1
		 ORDER BY atomic_number`, prefixPattern(q))
}

// Seed upserts elements in a single transaction after validating them as a set.
func (r *ElementRepository) Seed(ctx context.Context, elements []etypes.Element) (int, error) {
	if err := element.ValidateDataset(elements); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeElementDatasetInvalid, "refusing to seed invalid dataset")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin seed transaction")
	}
	defer func() { _ = tx.Rollback() }()

	start := time.Now()
	for _, e := range elements {
		if err := upsertElement(ctx, tx, e); err != nil {
			prom.RecordDBQuery(r.metrics, "seed_elements", time.Since(start), err)
			return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert element").WithDetail("symbol=" + e.Symbol)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit seed transaction")
	}
	prom.RecordDBQuery(r.metrics, "seed_elements", time.Since(start), nil)
	r.logger.Info("element table seeded", logging.Int("count", len(elements)))
	return len(elements), nil
}

func upsertElement(ctx context.Context, exec queryExecutor, e etypes.Element) error {
	states := make(pq.Int64Array, len(e.OxidationStates))
	for i, s := range e.OxidationStates {
		states[i] = int64(s)
	}
	var en sql.NullFloat64
	if e.Electronegativity != nil {
		en = sql.NullFloat64{Float64: *e.Electronegativity, Valid: true}
	}
	_, err := exec.ExecContext(ctx, `
		INSERT INTO elements (`+elementColumns+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (atomic_number) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			oxidation_states = EXCLUDED.oxidation_states,
			electronegativity = EXCLUDED.electronegativity,
			updated_at = NOW()`,
		e.AtomicNumber, e.Symbol, e.Name, string(e.Category), states, en)
	return err
}

func (r *ElementRepository) query(ctx context.Context, op, q string, args ...interface{}) ([]etypes.Element, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		prom.RecordDBQuery(r.metrics, op, time.Since(start), err)
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query elements")
	}
	defer rows.Close()

	out := make([]etypes.Element, 0)
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			prom.RecordDBQuery(r.metrics, op, time.Since(start), err)
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan element")
		}
		out = append(out, *e)
	}
	err = rows.Err()
	prom.RecordDBQuery(r.metrics, op, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate elements")
	}
	return out, nil
}

func scanElement(s scanner) (*etypes.Element, error) {
	var (
		e        etypes.Element
		category string
		states   pq.Int64Array
		en       sql.NullFloat64
	)
	if err := s.Scan(&e.AtomicNumber, &e.Symbol, &e.Name, &category, &states, &en); err != nil {
		return nil, err
	}
	cat, err := etypes.ParseCategory(category)
	if err != nil {
		cat = etypes.CategoryUnknown
	}
	e.Category = cat
	e.OxidationStates = make([]int, len(states))
	for i, v := range states {
		e.OxidationStates[i] = int(v)
	}
	if en.Valid {
		e.Electronegativity = etypes.Float(en.Float64)
	}
	return &e, nil
}

func ignoreNoRows(err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

var _ element.Repository = (*ElementRepository)(nil)
