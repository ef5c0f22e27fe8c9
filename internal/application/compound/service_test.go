package compound

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/internal/domain/element"
	"github.com/turtacn/CompoundForge/internal/infrastructure/database/redis"
	"github.com/turtacn/CompoundForge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/internal/infrastructure/storage/minio"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	err  error
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return c.err
	}
	b, ok := c.data[key]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "miss")
	}
	return json.Unmarshal(b, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

type fakeEvents struct {
	mu       sync.Mutex
	payloads []kafka.CompoundAnalyzedPayload
	keys     []string
	err      error
}

func (f *fakeEvents) PublishCompoundAnalyzed(_ context.Context, key string, p kafka.CompoundAnalyzedPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	f.payloads = append(f.payloads, p)
	return fmt.Sprintf("evt-%d", len(f.payloads)), nil
}

type fakeArchive struct {
	mu   sync.Mutex
	ids  []string
	meta []map[string]string
	err  error
}

func (f *fakeArchive) PutReport(_ context.Context, id string, _ interface{}, metadata map[string]string) (*minio.ReportInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.ids = append(f.ids, id)
	f.meta = append(f.meta, metadata)
	return &minio.ReportInfo{Key: minio.ReportKey(time.Now(), id)}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	kinds  []string
	events []interface{}
}

func (n *recordingNotifier) Notify(kind string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.events = append(n.events, payload)
}

// ─────────────────────────────────────────────────────────────────────────────
// Suite
// ─────────────────────────────────────────────────────────────────────────────

type ServiceTestSuite struct {
	suite.Suite
	cache    *mapCache
	events   *fakeEvents
	archive  *fakeArchive
	notifier *recordingNotifier
	svc      Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.cache = newMapCache()
	s.events = &fakeEvents{}
	s.archive = &fakeArchive{}
	s.notifier = &recordingNotifier{}
	svc, err := NewService(element.NewMemoryRepository(), domain.NewAnalyzer(),
		Config{CacheSize: 16, MaxBatchSize: 4, BatchConcurrency: 2}, logging.NewNopLogger(),
		WithCache(s.cache), WithEvents(s.events), WithArchive(s.archive), WithNotifier(s.notifier))
	s.Require().NoError(err)
	s.svc = svc
}

func (s *ServiceTestSuite) TestAnalyze_SodiumChloride() {
	res, err := s.svc.Analyze(context.Background(), &AnalyzeRequest{Symbols: []string{"na", " Cl "}})
	s.Require().NoError(err)
	s.Equal(domain.LikelihoodLikely, res.Likelihood)
	s.Equal(domain.BondIonic, res.BondType)
	s.Equal("NaCl", res.Candidates[0].Formula)
	s.True(res.RegistryMatch)
	s.False(res.Cached)
	s.Equal("evt-1", res.EventID)
	s.NotEmpty(res.ReportKey)

	s.Require().Len(s.events.payloads, 1)
	p := s.events.payloads[0]
	s.Equal("Cl-Na", s.events.keys[0])
	s.Equal([]string{"Na", "Cl"}, p.Elements)
	s.True(p.RegistryHit)
	s.Equal(res.ReportKey, p.ReportObject)
	s.Empty(p.UserFormula)

	s.Require().Len(s.archive.meta, 1)
	s.Equal("Cl-Na", s.archive.meta[0]["elements"])
	s.Equal([]string{FeedCompoundAnalyzed}, s.notifier.kinds)
}

func (s *ServiceTestSuite) TestAnalyze_DuplicatesCollapse() {
	res, err := s.svc.Analyze(context.Background(), &AnalyzeRequest{Symbols: []string{"H", "O", "h"}})
	s.Require().NoError(err)
	s.Len(res.Elements, 2)
}

func (s *ServiceTestSuite) TestAnalyze_SecondCallServedFromLocalCache() {
	ctx := context.Background()
	_, err := s.svc.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"H", "O"}})
	s.Require().NoError(err)
	res, err := s.svc.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"O", "H"}})
	s.Require().NoError(err)
	s.True(res.Cached)
	s.Empty(res.EventID)
	s.Len(s.events.payloads, 1)
	s.Equal(1, s.cache.gets)
	s.Len(s.notifier.kinds, 2)
}

func (s *ServiceTestSuite) TestAnalyze_SharedCacheHit() {
	ctx := context.Background()
	_, err := s.svc.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"Mg", "O"}})
	s.Require().NoError(err)

	// A second instance shares only the external cache.
	other, err := NewService(element.NewMemoryRepository(), nil, Config{CacheSize: 4}, nil, WithCache(s.cache))
	s.Require().NoError(err)
	res, err := other.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"Mg", "O"}})
	s.Require().NoError(err)
	s.True(res.Cached)
	s.Equal("MgO", res.Candidates[0].Formula)
}

func (s *ServiceTestSuite) TestAnalyze_UserCounts() {
	res, err := s.svc.Analyze(context.Background(), &AnalyzeRequest{
		Symbols: []string{"C", "H"},
		Counts:  map[string]int{"h": 4},
	})
	s.Require().NoError(err)
	s.True(res.UserSpecified)
	s.Equal(domain.LikelihoodLikely, res.Likelihood)
	s.Equal("H4C", res.Candidates[0].Formula)
	s.Equal("H4C", s.events.payloads[0].UserFormula)
}

func (s *ServiceTestSuite) TestAnalyze_FormulaField() {
	res, err := s.svc.Analyze(context.Background(), &AnalyzeRequest{Formula: "H2O"})
	s.Require().NoError(err)
	s.True(res.UserSpecified)
	s.Equal(domain.LikelihoodLikely, res.Likelihood)
	s.Equal("H2O", res.Candidates[0].Formula)
}

func (s *ServiceTestSuite) TestAnalyze_CacheKeysSeparateUserPath() {
	ctx := context.Background()
	auto, err := s.svc.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"H", "O"}})
	s.Require().NoError(err)
	user, err := s.svc.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"H", "O"}, Counts: map[string]int{"H": 1}})
	s.Require().NoError(err)
	s.False(auto.UserSpecified)
	s.True(user.UserSpecified)
	s.False(user.Cached)
}

func (s *ServiceTestSuite) TestAnalyze_ValidationErrors() {
	tests := []struct {
		name string
		req  *AnalyzeRequest
		code errors.ErrorCode
	}{
		{"nil request", nil, errors.ErrCodeBadRequest},
		{"unknown symbol", &AnalyzeRequest{Symbols: []string{"H", "Xx"}}, errors.ErrCodeElementNotFound},
		{"one element", &AnalyzeRequest{Symbols: []string{"H"}}, errors.ErrCodeCompoundTooFewElements},
		{"same element twice", &AnalyzeRequest{Symbols: []string{"O", "o"}}, errors.ErrCodeCompoundTooFewElements},
		{"zero count", &AnalyzeRequest{Symbols: []string{"H", "O"}, Counts: map[string]int{"H": 0}}, errors.ErrCodeCompoundInvalidCount},
		{"count above cap", &AnalyzeRequest{Symbols: []string{"H", "O"}, Counts: map[string]int{"O": 100}}, errors.ErrCodeCompoundInvalidCount},
		{"count outside set", &AnalyzeRequest{Symbols: []string{"H", "O"}, Counts: map[string]int{"N": 1}}, errors.ErrCodeCompoundCountNotInSet},
		{"bad formula", &AnalyzeRequest{Formula: "h2o"}, errors.ErrCodeCompoundInvalidFormula},
		{"formula and symbols", &AnalyzeRequest{Formula: "H2O", Symbols: []string{"H"}}, errors.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Analyze(context.Background(), tt.req)
			s.Require().Error(err)
			s.Equal(tt.code, errors.GetCode(err))
		})
	}
	s.Empty(s.events.payloads)
}

func (s *ServiceTestSuite) TestAnalyze_CancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.svc.Analyze(ctx, &AnalyzeRequest{Symbols: []string{"H", "O"}})
	s.True(errors.IsCode(err, errors.ErrCodeTimeout))
}

func (s *ServiceTestSuite) TestAnalyze_SideChannelFailuresDoNotFail() {
	s.events.err = stderrors.New("broker down")
	s.archive.err = stderrors.New("bucket gone")
	s.cache.err = stderrors.New("redis down")

	res, err := s.svc.Analyze(context.Background(), &AnalyzeRequest{Symbols: []string{"K", "Cl"}})
	s.Require().NoError(err)
	s.Empty(res.EventID)
	s.Empty(res.ReportKey)
	s.Equal("KCl", res.Candidates[0].Formula)
}

func (s *ServiceTestSuite) TestAnalyzeBatch() {
	res, err := s.svc.AnalyzeBatch(context.Background(), []*AnalyzeRequest{
		{Symbols: []string{"Na", "Cl"}},
		{Symbols: []string{"H"}},
		{Formula: "CO2"},
	})
	s.Require().NoError(err)
	s.Require().Len(res.Items, 3)
	s.Equal(2, res.Succeeded)
	s.Equal(1, res.Failed)

	s.Equal(0, res.Items[0].Index)
	s.NotNil(res.Items[0].Result)
	s.Nil(res.Items[1].Result)
	s.Equal(string(errors.ErrCodeCompoundTooFewElements), res.Items[1].Error.Code)
	s.Equal(2, res.Items[2].Index)
	s.NotNil(res.Items[2].Result)
}

func (s *ServiceTestSuite) TestAnalyzeBatch_Limits() {
	_, err := s.svc.AnalyzeBatch(context.Background(), nil)
	s.Equal(errors.ErrCodeBadRequest, errors.GetCode(err))

	reqs := make([]*AnalyzeRequest, 5)
	for i := range reqs {
		reqs[i] = &AnalyzeRequest{Symbols: []string{"H", "O"}}
	}
	_, err = s.svc.AnalyzeBatch(context.Background(), reqs)
	s.Equal(errors.ErrCodeCompoundBatchTooLarge, errors.GetCode(err))
}

func (s *ServiceTestSuite) TestElementLookups() {
	ctx := context.Background()
	e, err := s.svc.Element(ctx, "fe")
	s.Require().NoError(err)
	s.Equal("Fe", e.Symbol)
	s.Equal(26, e.AtomicNumber)

	_, err = s.svc.Element(ctx, "Qq")
	s.True(errors.IsNotFound(err))

	all, err := s.svc.Elements(ctx)
	s.Require().NoError(err)
	s.Len(all, 118)

	found, err := s.svc.SearchElements(ctx, "chl")
	s.Require().NoError(err)
	s.Require().NotEmpty(found)
	s.Equal("Cl", found[0].Symbol)

	_, err = s.svc.SearchElements(ctx, "  ")
	s.True(errors.IsCode(err, errors.ErrCodeValidation))

	s.Equal([]string{FeedElementLookup, FeedElementLookup}, s.notifier.kinds)
	lookup := s.notifier.events[1].(ElementLookup)
	s.Equal("search", lookup.Operation)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func TestNewService_RequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil, Config{}, nil)
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	in := &resolved{}
	repo := element.NewMemoryRepository()
	for _, sym := range []string{"H", "O"} {
		e, err := repo.FindBySymbol(context.Background(), sym)
		require.NoError(t, err)
		in.elements = append(in.elements, *e)
	}
	assert.Equal(t, "analysis:preferred:auto:1-8", cacheKey(domain.StrategyPreferred, in))

	in.counts = []domain.ElementCount{{Symbol: "H", Count: 2}, {Symbol: "O", Count: 1}}
	assert.Equal(t, "analysis:exhaustive:user:1x2-8x1", cacheKey(domain.StrategyExhaustive, in))
	assert.Equal(t, "H-O", elementSetKey(in))
}

func TestService_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(&redis.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	shared := redis.NewRedisCache(client, nil, redis.WithJitter(false))

	first, err := NewService(element.NewMemoryRepository(), nil, Config{}, nil, WithCache(shared))
	require.NoError(t, err)
	_, err = first.Analyze(context.Background(), &AnalyzeRequest{Symbols: []string{"Ca", "O"}})
	require.NoError(t, err)
	assert.True(t, mr.Exists("cforge:analysis:preferred:auto:8-20"))

	second, err := NewService(element.NewMemoryRepository(), nil, Config{}, nil, WithCache(shared))
	require.NoError(t, err)
	res, err := second.Analyze(context.Background(), &AnalyzeRequest{Symbols: []string{"O", "Ca"}})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "CaO", res.Candidates[0].Formula)
}
