package client

import (
	"context"
	"net/url"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

type ElementsClient struct {
	client *Client
}

type ElementList struct {
	Elements []etypes.Element `json:"elements"`
	Total    int              `json:"total"`
}

// Get fetches one element; symbol matching is case-insensitive server side.
func (e *ElementsClient) Get(ctx context.Context, symbol string) (*etypes.Element, error) {
	var out etypes.Element
	if err := e.client.get(ctx, "/api/v1/elements/"+url.PathEscape(symbol), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *ElementsClient) List(ctx context.Context) ([]etypes.Element, error) {
	var out ElementList
	if err := e.client.get(ctx, "/api/v1/elements", &out); err != nil {
		return nil, err
	}
	return out.Elements, nil
}

func (e *ElementsClient) Search(ctx context.Context, query string) ([]etypes.Element, error) {
	var out ElementList
	if err := e.client.get(ctx, "/api/v1/elements/search?q="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return out.Elements, nil
}
