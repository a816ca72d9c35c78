package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/lifecycle"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// Scheduler drives the periodic order maintenance sweep. One ticker
// runs all three passes in a fixed order: expire stale pending orders,
// advance everything else along the lifecycle, then drop duplicates.
type Scheduler struct {
	store    *orders.Store
	advancer *lifecycle.Advancer
	interval time.Duration
	logger   logger.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func New(store *orders.Store, advancer *lifecycle.Advancer, interval time.Duration, log logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		store:    store,
		advancer: advancer,
		interval: interval,
		logger:   log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the background sweep loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.run()
	}()

	s.logger.Info("Order scheduler started", "interval", s.interval)
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false

	s.logger.Info("Order scheduler stopped")
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs a single maintenance sweep. It is also called
// directly by the admin endpoint, so it must stay safe to invoke
// concurrently with the ticker.
func (s *Scheduler) RunOnce() {
	expired := s.advancer.SweepExpired()
	advanced := s.advancer.Sweep()
	s.store.Deduplicate()

	if expired > 0 || advanced > 0 {
		s.logger.Info("Order sweep completed", "expired", expired, "advanced", advanced)
	} else {
		s.logger.Debug("Order sweep completed with no changes")
	}
}
