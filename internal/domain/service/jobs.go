package service

import (
	"sort"
	"sync"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
)

// JobRegistry tracks async exec jobs. Finished jobs stay visible until the
// cleanup pass drops them, so "jobs" can show recent completions.
type JobRegistry struct {
	mu   sync.Mutex
	jobs map[string]model.AsyncJob
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{jobs: make(map[string]model.AsyncJob)}
}

func (r *JobRegistry) Put(job model.AsyncJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

func (r *JobRegistry) Get(id string) (model.AsyncJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	return job, ok
}

// List returns all jobs, newest first.
func (r *JobRegistry) List() []model.AsyncJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.AsyncJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Cleanup removes finished jobs older than retention and returns how many
// were dropped. Running jobs are never removed.
func (r *JobRegistry) Cleanup(retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention)
	removed := 0
	for id, job := range r.jobs {
		if job.Done() && job.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}
