package compound

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// resolved is a validated request: distinct elements ordered by atomic
// number and, on the user-formula path, one count per element.
type resolved struct {
	elements []etypes.Element
	counts   []domain.ElementCount
}

func (r *resolved) symbols() []string {
	out := make([]string, len(r.elements))
	for i, e := range r.elements {
		out[i] = e.Symbol
	}
	return out
}

func (s *serviceImpl) resolve(ctx context.Context, req *AnalyzeRequest) (*resolved, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "request body is required")
	}
	symbols, counts := req.Symbols, req.Counts
	if strings.TrimSpace(req.Formula) != "" {
		if len(req.Symbols) > 0 || len(req.Counts) > 0 {
			return nil, errors.New(errors.ErrCodeBadRequest, "formula cannot be combined with symbols or counts")
		}
		terms, err := domain.ParseFormula(req.Formula)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCompoundInvalidFormula, "formula could not be parsed").WithDetail(req.Formula)
		}
		symbols = make([]string, len(terms))
		counts = make(map[string]int, len(terms))
		for i, t := range terms {
			symbols[i] = t.Symbol
			counts[t.Symbol] = t.Count
		}
	}

	seen := make(map[int]bool, len(symbols))
	var elements []etypes.Element
	for _, sym := range symbols {
		e, err := s.repo.FindBySymbol(ctx, strings.TrimSpace(sym))
		if err != nil {
			return nil, err
		}
		if seen[e.AtomicNumber] {
			continue
		}
		seen[e.AtomicNumber] = true
		elements = append(elements, *e)
	}
	if len(elements) < 2 {
		return nil, errors.New(errors.ErrCodeCompoundTooFewElements, "at least two distinct elements are required").
			WithDetail(strings.Join(symbols, ","))
	}
	sort.Slice(elements, func(i, j int) bool { return elements[i].AtomicNumber < elements[j].AtomicNumber })

	out := &resolved{elements: elements}
	if len(counts) == 0 {
		return out, nil
	}

	bySymbol := make(map[string]int, len(counts))
	for raw, n := range counts {
		idx := -1
		for i, e := range elements {
			if strings.EqualFold(e.Symbol, strings.TrimSpace(raw)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errors.New(errors.ErrCodeCompoundCountNotInSet, "atom count references an element outside the request").WithDetail(raw)
		}
		if n < 1 || n > MaxAtomCount {
			return nil, errors.Newf(errors.ErrCodeCompoundInvalidCount, "atom count must be between 1 and %d", MaxAtomCount).
				WithDetail(fmt.Sprintf("%s=%d", raw, n))
		}
		bySymbol[elements[idx].Symbol] = n
	}
	out.counts = make([]domain.ElementCount, len(elements))
	for i, e := range elements {
		n, ok := bySymbol[e.Symbol]
		if !ok {
			n = 1
		}
		out.counts[i] = domain.ElementCount{Symbol: e.Symbol, Count: n}
	}
	return out, nil
}

// cacheKey is unique per strategy, element set and (for user formulas)
// counts: "analysis:preferred:auto:1-8" or "analysis:preferred:user:1x2-8x1".
func cacheKey(strategy domain.Strategy, in *resolved) string {
	var sb strings.Builder
	sb.WriteString("analysis:")
	sb.WriteString(string(strategy))
	if len(in.counts) > 0 {
		sb.WriteString(":user:")
	} else {
		sb.WriteString(":auto:")
	}
	for i, e := range in.elements {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(strconv.Itoa(e.AtomicNumber))
		if len(in.counts) > 0 {
			sb.WriteByte('x')
			sb.WriteString(strconv.Itoa(in.counts[i].Count))
		}
	}
	return sb.String()
}

// elementSetKey keys events by element set so one set stays on one partition.
func elementSetKey(in *resolved) string {
	symbols := in.symbols()
	sort.Strings(symbols)
	return strings.Join(symbols, "-")
}

// lookup checks the in-process LRU first and then the shared cache,
// promoting shared hits into the LRU.
func (s *serviceImpl) lookup(ctx context.Context, key string) (domain.CompoundAnalysis, bool) {
	if s.local != nil {
		if a, ok := s.local.Get(key); ok {
			prom.RecordCacheAccess(s.metrics, "local", true)
			return a, true
		}
		prom.RecordCacheAccess(s.metrics, "local", false)
	}
	if s.shared == nil {
		return domain.CompoundAnalysis{}, false
	}
	var a domain.CompoundAnalysis
	if err := s.shared.Get(ctx, key, &a); err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Warn("shared cache read failed", logging.Err(err), logging.String("key", key))
		}
		prom.RecordCacheAccess(s.metrics, "shared", false)
		return domain.CompoundAnalysis{}, false
	}
	prom.RecordCacheAccess(s.metrics, "shared", true)
	if s.local != nil {
		s.local.Add(key, a)
	}
	return a, true
}

func (s *serviceImpl) store(ctx context.Context, key string, a domain.CompoundAnalysis) {
	if s.local != nil {
		s.local.Add(key, a)
	}
	if s.shared != nil {
		if err := s.shared.Set(ctx, key, a, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("shared cache write failed", logging.Err(err), logging.String("key", key))
		}
	}
}
