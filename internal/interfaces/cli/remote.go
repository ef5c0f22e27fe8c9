package cli

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/pkg/client"
	"github.com/turtacn/CompoundForge/pkg/errors"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

// remoteService serves compound.Service over the REST API so every command
// renders local and remote results the same way.
type remoteService struct {
	c *client.Client
}

func newRemoteService(c *client.Client) compound.Service {
	return &remoteService{c: c}
}

func (r *remoteService) Analyze(ctx context.Context, req *compound.AnalyzeRequest) (*compound.AnalyzeResult, error) {
	a, err := r.c.Compounds().Analyze(ctx, toClientRequest(req))
	if err != nil {
		return nil, fromAPIError(err)
	}
	return fromClientAnalysis(a), nil
}

func (r *remoteService) AnalyzeBatch(ctx context.Context, reqs []*compound.AnalyzeRequest) (*compound.BatchResult, error) {
	in := make([]*client.AnalyzeRequest, len(reqs))
	for i, req := range reqs {
		in[i] = toClientRequest(req)
	}
	res, err := r.c.Compounds().AnalyzeBatch(ctx, in)
	if err != nil {
		return nil, fromAPIError(err)
	}
	out := &compound.BatchResult{
		Items:     make([]compound.BatchItem, len(res.Items)),
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
	}
	for i, item := range res.Items {
		out.Items[i] = compound.BatchItem{Index: item.Index}
		if item.Result != nil {
			out.Items[i].Result = fromClientAnalysis(item.Result)
		}
		if item.Error != nil {
			out.Items[i].Error = &compound.ItemError{Code: item.Error.Code, Message: item.Error.Message}
		}
	}
	return out, nil
}

func (r *remoteService) Element(ctx context.Context, symbol string) (*etypes.Element, error) {
	e, err := r.c.Elements().Get(ctx, symbol)
	return e, fromAPIError(err)
}

func (r *remoteService) Elements(ctx context.Context) ([]etypes.Element, error) {
	list, err := r.c.Elements().List(ctx)
	return list, fromAPIError(err)
}

func (r *remoteService) SearchElements(ctx context.Context, query string) ([]etypes.Element, error) {
	list, err := r.c.Elements().Search(ctx, query)
	return list, fromAPIError(err)
}

func toClientRequest(req *compound.AnalyzeRequest) *client.AnalyzeRequest {
	if req == nil {
		return &client.AnalyzeRequest{}
	}
	return &client.AnalyzeRequest{Symbols: req.Symbols, Counts: req.Counts, Formula: req.Formula}
}

func fromClientAnalysis(a *client.Analysis) *compound.AnalyzeResult {
	cands := make([]domain.CompoundCandidate, len(a.Candidates))
	for i, c := range a.Candidates {
		terms := make([]domain.OxidationTerm, len(c.OxidationAssignment))
		for j, t := range c.OxidationAssignment {
			terms[j] = domain.OxidationTerm{Symbol: t.Symbol, OxidationState: t.OxidationState, Count: t.Count}
		}
		cands[i] = domain.CompoundCandidate{Formula: c.Formula, OxidationAssignment: terms}
	}
	return &compound.AnalyzeResult{
		CompoundAnalysis: domain.CompoundAnalysis{
			Likelihood:                  domain.Likelihood(a.Likelihood),
			BondType:                    domain.BondType(a.BondType),
			Candidates:                  cands,
			ElectronegativityDifference: a.ElectronegativityDifference,
			Rationale:                   a.Rationale,
			Elements:                    a.Elements,
			UserSpecified:               a.UserSpecified,
			RegistryMatch:               a.RegistryMatch,
		},
		Cached:    a.Cached,
		EventID:   a.EventID,
		ReportKey: a.ReportKey,
	}
}

// fromAPIError keeps the server's code so callers can branch with IsCode.
func fromAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *client.APIError
	if !stderrors.As(err, &apiErr) || apiErr.Code == "" {
		return errors.Wrap(err, errors.ErrCodeExternalService, "api request failed")
	}
	ae := errors.New(errors.ErrorCode(apiErr.Code), apiErr.Message).WithCause(err)
	if apiErr.Detail != "" {
		ae = ae.WithDetail(apiErr.Detail)
	}
	return ae
}
