package background

import (
	"context"
	"log"
	"sync"
	"time"

	"congregate/internal/caching"
	"congregate/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages recurring maintenance jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	cacheSvc   caching.CacheService
	inviteRepo repositories.InviteRepository
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(cacheSvc caching.CacheService, inviteRepo repositories.InviteRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		cacheSvc:   cacheSvc,
		inviteRepo: inviteRepo,
		jobs:       make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Invite expiry sweep - every hour
	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.expirePendingInvites, context.Background()),
		gocron.WithName("invite-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create invite expiry job: %v", err)
	} else {
		js.jobs["invite-expiry"] = expiryJob
	}

	// Cache health probe - every 15 minutes
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.probeCache, context.Background()),
		gocron.WithName("cache-health-probe"),
	)
	if err != nil {
		log.Printf("Failed to create cache probe job: %v", err)
	} else {
		js.jobs["cache-probe"] = cacheJob
	}
}

// expirePendingInvites marks pending invites past their expiry as expired.
// Expiry is a sweep, not a read-time check: a stale pending invite whose
// membership already exists is harmless.
func (js *JobScheduler) expirePendingInvites(ctx context.Context) {
	expired, err := js.inviteRepo.ExpirePending(ctx, time.Now())
	if err != nil {
		log.Printf("Invite expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Invite expiry sweep: marked %d invites expired", expired)
	}
}

// probeCache logs when Redis becomes unreachable so degraded caching is
// visible before users notice slow reads.
func (js *JobScheduler) probeCache(ctx context.Context) {
	if err := js.cacheSvc.Ping(ctx); err != nil {
		log.Printf("Cache health probe failed: %v", err)
	}
}

// JobStatus reports the registered jobs and their next run times.
func (js *JobScheduler) JobStatus() map[string]time.Time {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]time.Time, len(js.jobs))
	for name, job := range js.jobs {
		if next, err := job.NextRun(); err == nil {
			status[name] = next
		}
	}
	return status
}
