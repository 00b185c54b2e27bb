package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// CheckService probes one service outside the polling loops and records the
// result. Lookup errors from the directory are returned as is.
func (s *Supervisor) CheckService(ctx context.Context, id domain.ServiceID) (domain.CheckResult, error) {
	svc, err := s.Dir.Get(ctx, id)
	if err != nil {
		return domain.CheckResult{}, err
	}
	res := s.probe(context.WithoutCancel(ctx), svc)
	s.Sink.Record(res)
	s.Logger.Info("adhoc_checked",
		zap.Int64("service_id", int64(svc.ID)),
		zap.Bool("up", res.Up),
		zap.Int("status", res.HTTPStatus),
	)
	return res, nil
}

// CheckAll probes every service in the directory one after another.
func (s *Supervisor) CheckAll(ctx context.Context) ([]domain.CheckResult, error) {
	services, err := s.Dir.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	pctx := context.WithoutCancel(ctx)
	out := make([]domain.CheckResult, 0, len(services))
	for _, svc := range services {
		res := s.probe(pctx, svc)
		s.Sink.Record(res)
		out = append(out, res)
	}
	s.Logger.Info("adhoc_checked_all", zap.Int("total", len(out)))
	return out, nil
}
