// Package scheduler runs one polling loop per monitored service and manages
// the lifecycle of the whole fleet.
package scheduler

import (
	"context"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/metrics"
	"github.com/hamed0406/healthchecker/internal/probe"
)

//go:generate mockgen -destination=mock_directory.go -package=scheduler github.com/hamed0406/healthchecker/internal/scheduler Directory

// Directory is the read side of the service store the supervisor needs.
type Directory interface {
	List(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id domain.ServiceID) (domain.Service, error)
}

const (
	DefaultStopTimeout = 5 * time.Second
	directoryTimeout   = 10 * time.Second
)

// generation is the set of loops spawned by a single Start.
type generation struct {
	num    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	loops map[domain.ServiceID]domain.Service
}

func (g *generation) done(id domain.ServiceID) {
	g.mu.Lock()
	delete(g.loops, id)
	g.mu.Unlock()
}

// Status is a snapshot of the supervisor.
type Status struct {
	Running    bool               `json:"running"`
	Generation uint64             `json:"generation"`
	Active     int                `json:"active"`
	Services   []domain.ServiceID `json:"services"`
}

// Supervisor owns the per-service polling loops. Start, Stop and Restart are
// serialized; at most one generation is live at a time.
type Supervisor struct {
	Logger      *zap.Logger
	Dir         Directory
	Checker     probe.Checker
	Sink        metrics.Sink
	StopTimeout time.Duration

	mu      sync.Mutex
	current *generation
	count   uint64
}

func NewSupervisor(logger *zap.Logger, dir Directory, checker probe.Checker, sink metrics.Sink, stopTimeout time.Duration) *Supervisor {
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Supervisor{
		Logger:      logger,
		Dir:         dir,
		Checker:     checker,
		Sink:        sink,
		StopTimeout: stopTimeout,
	}
}

// Start stops any running generation, reads the directory and spawns one loop
// per service. It returns the number of loops spawned. A directory failure is
// logged and leaves the supervisor running with no loops.
func (s *Supervisor) Start(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx)
}

// Stop cancels the running generation and waits for its loops to return,
// at most StopTimeout.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Restart is Stop followed by Start under a single lock hold.
func (s *Supervisor) Restart(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	n := s.startLocked(ctx)
	s.Logger.Info("supervisor_restarted", zap.Int("active", n))
	return n
}

func (s *Supervisor) Status() Status {
	s.mu.Lock()
	g := s.current
	s.mu.Unlock()

	if g == nil {
		return Status{Services: []domain.ServiceID{}}
	}
	g.mu.Lock()
	ids := make([]domain.ServiceID, 0, len(g.loops))
	for id := range g.loops {
		ids = append(ids, id)
	}
	g.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return Status{Running: true, Generation: g.num, Active: len(ids), Services: ids}
}

func (s *Supervisor) startLocked(ctx context.Context) int {
	s.stopLocked()

	if ctx == nil {
		ctx = context.Background()
	}

	lctx, lcancel := context.WithTimeout(ctx, directoryTimeout)
	services, err := s.Dir.List(lctx)
	lcancel()

	s.count++
	gctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g := &generation{
		num:    s.count,
		cancel: cancel,
		loops:  make(map[domain.ServiceID]domain.Service, len(services)),
	}
	s.current = g

	if err != nil {
		s.Logger.Error("supervisor_directory_error", zap.Error(err))
		s.Logger.Info("supervisor_started", zap.Uint64("generation", g.num), zap.Int("active", 0))
		return 0
	}

	for _, svc := range services {
		if _, dup := g.loops[svc.ID]; dup {
			s.Logger.Warn("poller_duplicate_skipped",
				zap.Int64("service_id", int64(svc.ID)),
				zap.String("service_name", svc.Name),
			)
			continue
		}
		if !validTarget(svc.URL) {
			s.Logger.Error("poller_spawn_failed",
				zap.Int64("service_id", int64(svc.ID)),
				zap.String("service_name", svc.Name),
				zap.String("url", svc.URL),
			)
			continue
		}
		g.loops[svc.ID] = svc
		g.wg.Add(1)
		go s.poll(gctx, g, svc)
	}

	n := len(g.loops)
	s.Logger.Info("supervisor_started", zap.Uint64("generation", g.num), zap.Int("active", n))
	return n
}

func (s *Supervisor) stopLocked() {
	g := s.current
	if g == nil {
		return
	}
	s.current = nil
	g.cancel()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	timeout := s.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-done:
		s.Logger.Info("supervisor_stopped", zap.Uint64("generation", g.num))
	case <-t.C:
		s.Logger.Warn("supervisor_stop_timeout",
			zap.Uint64("generation", g.num),
			zap.Duration("timeout", timeout),
		)
	}
}

func validTarget(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
