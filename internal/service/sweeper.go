package service

import (
	"context"
	"log"
	"sync"
	"time"
)

type planExpirer interface {
	ExpireLapsedPlans(ctx context.Context) (int64, error)
}

// PlanSweeper periodically downgrades expired premium accounts. It is
// owned by the process lifecycle: Start once at boot, Stop on shutdown.
// At most one sweep runs at a time; a tick that fires while the
// previous sweep is still going is skipped.
type PlanSweeper struct {
	expirer  planExpirer
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewPlanSweeper(expirer planExpirer, interval time.Duration) *PlanSweeper {
	return &PlanSweeper{
		expirer:  expirer,
		interval: interval,
	}
}

// Start runs one sweep immediately, then one per interval until Stop.
func (s *PlanSweeper) Start() {
	if s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop()
	log.Printf("[PlanSweeper] started, sweeping every %s", s.interval)
}

// Stop ends the loop and waits for any in-flight sweep to finish, so
// shutdown (and tests) are deterministic.
func (s *PlanSweeper) Stop() {
	if !s.started {
		return
	}
	close(s.stop)
	<-s.done
	s.started = false
}

func (s *PlanSweeper) loop() {
	defer close(s.done)

	s.RunOnce(context.Background())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// RunOnce performs a single sweep. If another sweep holds the lock the
// call is skipped; overlapping sweeps would double-count and fight over
// the same rows. Errors are logged and left for the next tick.
func (s *PlanSweeper) RunOnce(ctx context.Context) int64 {
	if !s.mu.TryLock() {
		log.Printf("[PlanSweeper] previous sweep still running, skipping")
		return 0
	}
	defer s.mu.Unlock()

	count, err := s.expirer.ExpireLapsedPlans(ctx)
	if err != nil {
		log.Printf("[PlanSweeper] sweep failed: %v", err)
		return 0
	}

	if count > 0 {
		log.Printf("[PlanSweeper] downgraded %d expired premium account(s)", count)
	}
	return count
}
