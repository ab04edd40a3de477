package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const expirySweepTimeout = 30 * time.Second

// PolicyExpirer moves ACTIVE policies past their end date to EXPIRED and
// reports how many changed.
type PolicyExpirer interface {
	ExpireEnded(ctx context.Context) (int, error)
}

// ExpirySweeper runs PolicyExpirer on a fixed interval until stopped.
type ExpirySweeper struct {
	expirer  PolicyExpirer
	interval time.Duration
	log      *logrus.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewExpirySweeper(expirer PolicyExpirer, interval time.Duration, log *logrus.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start sweeps once immediately and then on every tick. A non-positive
// interval disables the sweeper.
func (s *ExpirySweeper) Start() {
	if s.interval <= 0 {
		s.log.Info("Policy expiry sweeper disabled")
		return
	}
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go s.loop()
}

// Stop waits for an in-flight sweep to finish. Safe to call multiple times.
func (s *ExpirySweeper) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("Policy expiry sweeper stopped")
	}
}

func (s *ExpirySweeper) loop() {
	defer s.wg.Done()

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *ExpirySweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), expirySweepTimeout)
	defer cancel()

	n, err := s.expirer.ExpireEnded(ctx)
	if err != nil {
		s.log.Warnf("Failed to expire ended policies: %+v", err)
		return
	}
	if n > 0 {
		s.log.WithField("count", n).Info("Expired ended policies")
	}
}
