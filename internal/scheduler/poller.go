package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// poll is the body of one service loop. It checks immediately, then once per
// interval until ctx is cancelled.
func (s *Supervisor) poll(ctx context.Context, g *generation, svc domain.Service) {
	defer g.wg.Done()
	defer g.done(svc.ID)
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("poller_panic",
				zap.String("correlation_id", uuid.NewString()),
				zap.Int64("service_id", int64(svc.ID)),
				zap.String("service_name", svc.Name),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	interval := svc.Interval()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Debug("poller_stopped", zap.Int64("service_id", int64(svc.ID)))
			return
		case <-timer.C:
		}

		res := s.probe(ctx, svc)
		if ctx.Err() != nil {
			// cancelled mid-probe; the result belongs to a dead generation
			return
		}
		s.Sink.Record(res)
		s.Logger.Debug("poller_checked",
			zap.Int64("service_id", int64(svc.ID)),
			zap.String("url", svc.URL),
			zap.Int("status", res.HTTPStatus),
			zap.Bool("up", res.Up),
			zap.Duration("latency", res.Latency),
			zap.String("reason", res.Reason),
		)

		timer.Reset(interval)
	}
}

// probe runs one check and times it.
func (s *Supervisor) probe(ctx context.Context, svc domain.Service) domain.CheckResult {
	start := time.Now()
	out := s.Checker.Check(ctx, svc.URL)
	return domain.CheckResult{
		ServiceID:  svc.ID,
		Name:       svc.Name,
		URL:        svc.URL,
		Up:         out.Success,
		HTTPStatus: out.StatusCode,
		Latency:    time.Since(start),
		Reason:     out.Message,
		CheckedAt:  time.Now().UTC(),
	}
}
