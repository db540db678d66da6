package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/observability"
)

// autoSyncer is the slice of the sync service the scheduler drives
type autoSyncer interface {
	SyncAll(ctx context.Context, storeID string, class models.SourceClass, autoOnly bool) ([]*models.SyncLink, error)
}

// SchedulerService runs the periodic auto-sync passes: one trigger per
// source class, each on its own interval. Per-link failures are contained
// inside the pass; a pass that is still running when the next tick arrives
// is skipped rather than stacked.
type SchedulerService struct {
	syncer  autoSyncer
	clock   clockwork.Clock
	metrics *observability.SyncMetrics

	remoteInterval time.Duration
	localInterval  time.Duration

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  map[models.SourceClass]bool
}

// NewSchedulerService creates a new SchedulerService
func NewSchedulerService(syncer autoSyncer, clock clockwork.Clock, remoteInterval, localInterval time.Duration) *SchedulerService {
	if remoteInterval <= 0 {
		remoteInterval = 5 * time.Minute
	}
	if localInterval <= 0 {
		localInterval = 3 * time.Minute
	}

	return &SchedulerService{
		syncer:         syncer,
		clock:          clock,
		remoteInterval: remoteInterval,
		localInterval:  localInterval,
		running:        make(map[models.SourceClass]bool),
	}
}

// SetMetrics attaches sync metrics instruments
func (s *SchedulerService) SetMetrics(metrics *observability.SyncMetrics) {
	s.metrics = metrics
}

// Start launches both periodic triggers. Calling Start on a running
// scheduler is a no-op.
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(2)
	go s.runLoop(models.SourceClassRemote, s.remoteInterval)
	go s.runLoop(models.SourceClassLocal, s.localInterval)

	log.Printf("Scheduler started: remote auto-sync every %s, local auto-sync every %s",
		s.remoteInterval, s.localInterval)
}

// Stop halts both triggers and waits for any in-flight pass to finish
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("Scheduler stopped")
}

func (s *SchedulerService) runLoop(class models.SourceClass, interval time.Duration) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.runPass(class)
		case <-s.stopChan:
			return
		}
	}
}

// runPass executes one auto-sync pass for a source class. Non-reentrant per
// class: a tick arriving while the previous pass still runs is skipped.
func (s *SchedulerService) runPass(class models.SourceClass) {
	s.mu.Lock()
	if s.running[class] {
		s.mu.Unlock()
		log.Printf("Skipping %s auto-sync pass: previous pass still running", class)
		return
	}
	s.running[class] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[class] = false
		s.mu.Unlock()
	}()

	ctx := context.Background()
	log.Printf("Running %s auto-sync pass...", class)

	results, err := s.syncer.SyncAll(ctx, "", class, true)
	if err != nil {
		log.Printf("Error in %s auto-sync pass: %v", class, err)
		return
	}

	s.metrics.RecordSchedulerPass(ctx, string(class), len(results))
	log.Printf("%s auto-sync pass completed: %d links processed", class, len(results))
}
