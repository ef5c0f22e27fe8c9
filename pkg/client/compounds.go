package client

import (
	"context"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

type CompoundsClient struct {
	client *Client
}

// AnalyzeRequest takes either Symbols (with optional Counts) or Formula.
type AnalyzeRequest struct {
	Symbols []string       `json:"symbols,omitempty"`
	Counts  map[string]int `json:"counts,omitempty"`
	Formula string         `json:"formula,omitempty"`
}

type OxidationTerm struct {
	Symbol         string `json:"symbol"`
	OxidationState int    `json:"oxidation_state"`
	Count          int    `json:"count"`
}

type Candidate struct {
	Formula             string          `json:"formula"`
	OxidationAssignment []OxidationTerm `json:"oxidation_assignment"`
}

// Analysis mirrors the server's analysis JSON.
type Analysis struct {
	Likelihood                  string           `json:"likelihood"`
	BondType                    string           `json:"bond_type"`
	Candidates                  []Candidate      `json:"candidates"`
	ElectronegativityDifference *float64         `json:"electronegativity_difference,omitempty"`
	Rationale                   string           `json:"rationale"`
	Elements                    []etypes.Element `json:"elements"`
	UserSpecified               bool             `json:"user_specified"`
	RegistryMatch               bool             `json:"registry_match"`
	Cached                      bool             `json:"cached"`
	EventID                     string           `json:"event_id,omitempty"`
	ReportKey                   string           `json:"report_key,omitempty"`
}

type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BatchItem struct {
	Index  int        `json:"index"`
	Result *Analysis  `json:"result,omitempty"`
	Error  *ItemError `json:"error,omitempty"`
}

type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

func (c *CompoundsClient) Analyze(ctx context.Context, req *AnalyzeRequest) (*Analysis, error) {
	var out Analysis
	if err := c.client.post(ctx, "/api/v1/compounds/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CompoundsClient) AnalyzeBatch(ctx context.Context, reqs []*AnalyzeRequest) (*BatchResult, error) {
	var out BatchResult
	body := struct {
		Requests []*AnalyzeRequest `json:"requests"`
	}{reqs}
	if err := c.client.post(ctx, "/api/v1/compounds/analyze/batch", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
