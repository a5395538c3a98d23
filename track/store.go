package track

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratalab/gensync/internal/telemetry"
)

// SubscriberChannelBufferSize is the buffer size for subscriber channels.
// A subscriber that falls this far behind starts dropping snapshots; the
// next snapshot it does receive carries the latest state, so nothing is
// permanently lost.
const SubscriberChannelBufferSize = 100

type subscriber struct {
	jobID string // "" subscribes to all jobs
	ch    chan Job
}

// Store is the single arbiter of job state. Both push transports and the
// unary call funnel through Apply, so duplicate delivery across transports
// collapses into one state transition.
//
// The store never time-expires entries; eviction is owned by consumers.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	subs map[string]subscriber
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*Job),
		subs: make(map[string]subscriber),
	}
}

// Apply reconciles one canonical event into the store. It is idempotent and
// order-tolerant. Returns true if the event produced an observable change;
// subscribers are notified exactly once per such change.
func (s *Store) Apply(ev Event) bool {
	if ev.JobID == "" {
		// A job with no id must never enter the store.
		telemetry.EventsDiscarded.Inc()
		return false
	}

	s.mu.Lock()

	now := time.Now()
	job, exists := s.jobs[ev.JobID]
	if !exists {
		job = &Job{ID: ev.JobID, Status: StatusUnknown, CreatedAt: now}
		s.jobs[ev.JobID] = job
	}
	changed := !exists

	if exists && job.Status.Terminal() {
		// Terminal is absorbing. A late duplicate of the same terminal status
		// is expected (both transports deliver the final event) and is a
		// no-op, not an error; so is anything else that straggles in.
		s.mu.Unlock()
		telemetry.EventsDiscarded.Inc()
		return false
	}

	// Status moves forward only: queued < running < terminal. A queued event
	// arriving after running is ignored for status but may still update the
	// display message below.
	if ev.Status.rank() > job.Status.rank() {
		job.Status = ev.Status
		changed = true
	}

	// An unrecognized wire status never advances Status, but the change is
	// recorded rather than dropped.
	if ev.Status == StatusUnknown && ev.RawStatus != "" && ev.RawStatus != job.RawStatus {
		job.RawStatus = ev.RawStatus
		changed = true
	}

	// Progress floor: clamp to [0,100] and never regress.
	if p := clampProgress(ev.Progress); p > job.Progress {
		job.Progress = p
		changed = true
	}

	if ev.Message != "" && ev.Message != job.Message {
		job.Message = ev.Message
		changed = true
	}
	if ev.CurrentStep != "" && ev.CurrentStep != job.CurrentStep {
		job.CurrentStep = ev.CurrentStep
		changed = true
	}

	// Result payloads are stored only on the transition into a terminal
	// state; the absorption check above makes this branch unreachable
	// afterwards.
	switch {
	case job.Status == StatusSucceeded:
		job.Files = ev.Files
	case job.Status == StatusFailed:
		job.FailureReason = ev.FailureReason
	}

	if !changed {
		s.mu.Unlock()
		telemetry.EventsDiscarded.Inc()
		return false
	}

	job.Seq++
	job.UpdatedAt = now
	s.notifyLocked(job)
	s.mu.Unlock()

	telemetry.EventsApplied.Inc()
	return true
}

// Track seeds a job record from the unary submit call's returned id and
// initial status. It funnels through Apply like every other source.
func (s *Store) Track(jobID string, initial Status) bool {
	return s.Apply(Event{JobID: jobID, Status: initial})
}

// Get returns a snapshot of the job's current state.
func (s *Store) Get(jobID string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return job.snapshot(), true
}

// List returns snapshots of all tracked jobs, oldest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.snapshot())
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// Evict removes a job from the store. Eviction policy is owned by consumers
// (e.g. a list view dropping old completed entries).
func (s *Store) Evict(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; !ok {
		return false
	}
	delete(s.jobs, jobID)
	return true
}

// Subscribe registers for change notifications. jobID "" subscribes to all
// jobs. Snapshots are delivered on the returned channel; the returned func
// unsubscribes and closes it.
func (s *Store) Subscribe(jobID string) (<-chan Job, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := uuid.NewString()
	ch := make(chan Job, SubscriberChannelBufferSize)
	s.subs[key] = subscriber{jobID: jobID, ch: ch}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[key]; ok {
			// Remove before close: sends happen under the same lock, so no
			// send can race the close.
			delete(s.subs, key)
			close(sub.ch)
		}
	}
}

// notifyLocked fans a snapshot out to matching subscribers. Callers hold
// s.mu. Sends are non-blocking; a full channel drops the snapshot.
func (s *Store) notifyLocked(job *Job) {
	snap := job.snapshot()
	for _, sub := range s.subs {
		if sub.jobID != "" && sub.jobID != job.ID {
			continue
		}
		select {
		case sub.ch <- snap:
		default:
			// Subscriber too slow - drop
		}
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
