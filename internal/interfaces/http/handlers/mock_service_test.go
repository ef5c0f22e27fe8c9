package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) Analyze(ctx context.Context, req *compound.AnalyzeRequest) (*compound.AnalyzeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compound.AnalyzeResult), args.Error(1)
}

func (m *MockService) AnalyzeBatch(ctx context.Context, reqs []*compound.AnalyzeRequest) (*compound.BatchResult, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compound.BatchResult), args.Error(1)
}

func (m *MockService) Element(ctx context.Context, symbol string) (*etypes.Element, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*etypes.Element), args.Error(1)
}

func (m *MockService) Elements(ctx context.Context) ([]etypes.Element, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]etypes.Element), args.Error(1)
}

func (m *MockService) SearchElements(ctx context.Context, query string) ([]etypes.Element, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]etypes.Element), args.Error(1)
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
