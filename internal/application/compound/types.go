// Package compound is the application service in front of the compound
// engine. It resolves element symbols, validates atom counts, caches
// results and fans each fresh analysis out to events, the report archive
// and the live feed.
package compound

import (
	"context"
	"time"

	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CompoundForge/internal/infrastructure/storage/minio"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// MaxAtomCount bounds every explicit count.
const MaxAtomCount = 99

// Service is the use-case surface shared by HTTP, gRPC and the CLI.
type Service interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResult, error)
	AnalyzeBatch(ctx context.Context, reqs []*AnalyzeRequest) (*BatchResult, error)
	Element(ctx context.Context, symbol string) (*etypes.Element, error)
	Elements(ctx context.Context) ([]etypes.Element, error)
	SearchElements(ctx context.Context, query string) ([]etypes.Element, error)
}

// AnalyzeRequest names the elements to combine. Formula is an alternative to
// Symbols plus Counts: "CaCO3" is the same as symbols [Ca C O] with counts
// {Ca:1 C:1 O:3}.
type AnalyzeRequest struct {
	Symbols []string       `json:"symbols,omitempty"`
	Counts  map[string]int `json:"counts,omitempty"`
	Formula string         `json:"formula,omitempty"`
}

// AnalyzeResult wraps the engine output with delivery details.
type AnalyzeResult struct {
	domain.CompoundAnalysis
	Cached    bool   `json:"cached"`
	EventID   string `json:"event_id,omitempty"`
	ReportKey string `json:"report_key,omitempty"`
}

// BatchItem is the outcome of one request inside a batch. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Index  int            `json:"index"`
	Result *AnalyzeResult `json:"result,omitempty"`
	Error  *ItemError     `json:"error,omitempty"`
}

// ItemError is the client-facing form of a per-item failure.
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult keeps input order.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Feed event kinds.
const (
	FeedElementLookup    = "element.lookup"
	FeedCompoundAnalyzed = "compound.analyzed"
)

// ElementLookup is the feed payload for element reads.
type ElementLookup struct {
	Operation string   `json:"operation"`
	Query     string   `json:"query,omitempty"`
	Symbols   []string `json:"symbols"`
}

// AnalysisSummary is the feed payload for analyses.
type AnalysisSummary struct {
	Elements   []string  `json:"elements"`
	Likelihood string    `json:"likelihood"`
	BondType   string    `json:"bond_type"`
	Formulas   []string  `json:"formulas"`
	Cached     bool      `json:"cached"`
	At         time.Time `json:"at"`
}

// Cache is the shared result cache. The redis Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// EventPublisher emits compound.analyzed events.
type EventPublisher interface {
	PublishCompoundAnalyzed(ctx context.Context, key string, payload kafka.CompoundAnalyzedPayload) (string, error)
}

// ReportArchive persists full analysis reports.
type ReportArchive interface {
	PutReport(ctx context.Context, id string, report interface{}, metadata map[string]string) (*minio.ReportInfo, error)
}

// Notifier pushes feed events to live subscribers. Implementations must not
// block.
type Notifier interface {
	Notify(kind string, payload interface{})
}
