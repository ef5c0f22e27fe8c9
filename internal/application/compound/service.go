package compound

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/internal/domain/element"
	"github.com/turtacn/CompoundForge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// Config holds the service knobs taken from the engine section.
type Config struct {
	CacheSize        int
	CacheTTL         time.Duration
	MaxBatchSize     int
	BatchConcurrency int
}

func (c *Config) applyDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 100
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 8
	}
}

// Option wires an optional collaborator.
type Option func(*serviceImpl)

func WithCache(c Cache) Option { return func(s *serviceImpl) { s.shared = c } }

func WithEvents(p EventPublisher) Option { return func(s *serviceImpl) { s.events = p } }

func WithArchive(a ReportArchive) Option { return func(s *serviceImpl) { s.archive = a } }

func WithNotifier(n Notifier) Option { return func(s *serviceImpl) { s.notifier = n } }

func WithMetrics(m *prom.AppMetrics) Option { return func(s *serviceImpl) { s.metrics = m } }

type serviceImpl struct {
	repo     element.Repository
	analyzer *domain.Analyzer
	cfg      Config
	logger   logging.Logger
	metrics  *prom.AppMetrics

	local    *lru.Cache[string, domain.CompoundAnalysis]
	shared   Cache
	events   EventPublisher
	archive  ReportArchive
	notifier Notifier

	now func() time.Time
}

// NewService builds the service. A zero CacheSize disables the in-process
// cache.
func NewService(repo element.Repository, analyzer *domain.Analyzer, cfg Config, logger logging.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.ErrCodeInternal, "element repository is required")
	}
	if analyzer == nil {
		analyzer = domain.NewAnalyzer()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg.applyDefaults()

	s := &serviceImpl{
		repo:     repo,
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	if cfg.CacheSize > 0 {
		local, err := lru.New[string, domain.CompoundAnalysis](cfg.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create analysis cache")
		}
		s.local = local
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = prom.NewNopAppMetrics()
	}
	return s, nil
}

// Analyze validates req, serves the analysis from cache when possible and
// otherwise runs the engine. Delivery side effects never fail the call.
func (s *serviceImpl) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResult, error) {
	in, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "analysis cancelled")
	}

	key := cacheKey(s.analyzer.Strategy(), in)
	if analysis, ok := s.lookup(ctx, key); ok {
		prom.RecordAnalysis(s.metrics, analysis.Likelihood.String(), analysis.BondType.String(), "cache", len(analysis.Candidates))
		res := &AnalyzeResult{CompoundAnalysis: analysis, Cached: true}
		s.notifyAnalysis(res)
		return res, nil
	}

	timer := prom.NewTimer(s.metrics.AnalysisDuration.WithLabelValues(analysisPath(in)))
	analysis := s.analyzer.Analyze(in.elements, in.counts)
	elapsed := timer.ObserveDuration()
	prom.RecordAnalysis(s.metrics, analysis.Likelihood.String(), analysis.BondType.String(), "engine", len(analysis.Candidates))

	s.store(ctx, key, analysis)

	res := &AnalyzeResult{CompoundAnalysis: analysis}
	s.deliver(ctx, res, in, elapsed)
	s.notifyAnalysis(res)

	s.logger.Debug("compound analyzed",
		logging.Strings("elements", in.symbols()),
		logging.String("likelihood", analysis.Likelihood.String()),
		logging.String("bond_type", analysis.BondType.String()),
		logging.Int("candidates", len(analysis.Candidates)),
		logging.Duration("elapsed", elapsed))
	return res, nil
}

func analysisPath(in *resolved) string {
	switch {
	case len(in.counts) > 0:
		return "user"
	case len(in.elements) == 2:
		return "binary"
	default:
		return "multi"
	}
}

// deliver archives the report and then publishes the event that points at it.
func (s *serviceImpl) deliver(ctx context.Context, res *AnalyzeResult, in *resolved, elapsed time.Duration) {
	reportID := uuid.New().String()
	if s.archive != nil {
		info, err := s.archive.PutReport(ctx, reportID, res.CompoundAnalysis, map[string]string{
			"elements":   elementSetKey(in),
			"likelihood": res.Likelihood.String(),
		})
		prom.RecordArchive(s.metrics, err)
		if err != nil {
			s.logger.Warn("report archive failed", logging.Err(err), logging.String("report_id", reportID))
		} else {
			res.ReportKey = info.Key
		}
	}

	if s.events != nil {
		payload := kafka.CompoundAnalyzedPayload{
			Elements:       in.symbols(),
			Likelihood:     res.Likelihood.String(),
			BondType:       res.BondType.String(),
			Formulas:       res.Formulas(),
			RegistryHit:    res.RegistryMatch,
			ReportObject:   res.ReportKey,
			AnalyzedAt:     s.now().UTC(),
			DurationMicros: elapsed.Microseconds(),
		}
		if len(in.counts) > 0 && len(res.Candidates) > 0 {
			payload.UserFormula = res.Candidates[0].Formula
		}
		id, err := s.events.PublishCompoundAnalyzed(ctx, elementSetKey(in), payload)
		if t, ok := s.events.(interface{ Topic() string }); ok {
			prom.RecordEventPublish(s.metrics, t.Topic(), err)
		} else {
			prom.RecordEventPublish(s.metrics, kafka.EventCompoundAnalyzed, err)
		}
		if err != nil {
			s.logger.Warn("event publish failed", logging.Err(err))
		} else {
			res.EventID = id
		}
	}
}

func (s *serviceImpl) notifyAnalysis(res *AnalyzeResult) {
	if s.notifier == nil {
		return
	}
	symbols := make([]string, len(res.Elements))
	for i, e := range res.Elements {
		symbols[i] = e.Symbol
	}
	s.notifier.Notify(FeedCompoundAnalyzed, AnalysisSummary{
		Elements:   symbols,
		Likelihood: res.Likelihood.String(),
		BondType:   res.BondType.String(),
		Formulas:   res.Formulas(),
		Cached:     res.Cached,
		At:         s.now().UTC(),
	})
}

func (s *serviceImpl) Element(ctx context.Context, symbol string) (*etypes.Element, error) {
	e, err := s.repo.FindBySymbol(ctx, strings.TrimSpace(symbol))
	prom.RecordElementLookup(s.metrics, "show", err)
	if err != nil {
		return nil, err
	}
	s.notifyLookup("show", symbol, []etypes.Element{*e})
	return e, nil
}

func (s *serviceImpl) Elements(ctx context.Context) ([]etypes.Element, error) {
	list, err := s.repo.List(ctx)
	prom.RecordElementLookup(s.metrics, "list", err)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *serviceImpl) SearchElements(ctx context.Context, query string) ([]etypes.Element, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.ErrCodeValidation, "search query is required")
	}
	list, err := s.repo.Search(ctx, query)
	prom.RecordElementLookup(s.metrics, "search", err)
	if err != nil {
		return nil, err
	}
	s.notifyLookup("search", query, list)
	return list, nil
}

func (s *serviceImpl) notifyLookup(op, query string, found []etypes.Element) {
	if s.notifier == nil {
		return
	}
	symbols := make([]string, len(found))
	for i, e := range found {
		symbols[i] = e.Symbol
	}
	s.notifier.Notify(FeedElementLookup, ElementLookup{Operation: op, Query: query, Symbols: symbols})
}
