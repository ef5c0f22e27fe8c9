package compound

import (
	"context"
	stderrors "errors"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

// AnalyzeBatch runs each request with bounded concurrency. A failing item is
// reported in place and does not abort its siblings.
func (s *serviceImpl) AnalyzeBatch(ctx context.Context, reqs []*AnalyzeRequest) (*BatchResult, error) {
	if len(reqs) == 0 {
		return nil, errors.New(errors.ErrCodeBadRequest, "batch is empty")
	}
	if len(reqs) > s.cfg.MaxBatchSize {
		err := errors.Newf(errors.ErrCodeCompoundBatchTooLarge, "batch of %d exceeds the maximum of %d", len(reqs), s.cfg.MaxBatchSize)
		prom.RecordBatch(s.metrics, len(reqs), err)
		return nil, err
	}

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			items[i].Index = i
			res, err := s.Analyze(gctx, req)
			if err != nil {
				items[i].Error = toItemError(err)
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	// Items never return errors, so Wait only synchronizes.
	_ = g.Wait()

	out := &BatchResult{Items: items}
	for _, it := range items {
		if it.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	prom.RecordBatch(s.metrics, len(reqs), nil)
	s.logger.Debug("batch analyzed",
		logging.Int("size", len(reqs)),
		logging.Int("failed", out.Failed))
	return out, nil
}

func toItemError(err error) *ItemError {
	code := errors.GetCode(err)
	msg := err.Error()
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		msg = ae.Message
		if ae.Detail != "" {
			msg += ": " + ae.Detail
		}
	}
	return &ItemError{Code: code.String(), Message: msg}
}
