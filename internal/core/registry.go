package core

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobRegistry stores job state. Implementations must be safe for concurrent
// use and hand out copies, never shared references.
type JobRegistry interface {
	// Put stores job, replacing any job with the same id.
	Put(job Job)

	// Get returns a copy of the job with id.
	Get(id string) (Job, bool)

	// Update applies fn to the stored job under the registry lock.
	Update(id string, fn func(*Job)) (Job, error)

	// CompareAndSwapStatus moves job id from status from to status to and
	// applies fn, only when its current status is from.
	CompareAndSwapStatus(id string, from, to Status, fn func(*Job)) (Job, bool)

	// List returns copies of every job, newest first.
	List() []Job

	// Delete removes job id.
	Delete(id string)
}

// MemoryRegistry is an in-process JobRegistry. Jobs do not survive restarts.
type MemoryRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{jobs: make(map[string]*Job)}
}

func (r *MemoryRegistry) Put(job Job) {
	c := job.clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = &c
}

func (r *MemoryRegistry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return j.clone(), true
}

func (r *MemoryRegistry) Update(id string, fn func(*Job)) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("update %s: %w", id, ErrJobNotFound)
	}
	fn(j)
	return j.clone(), nil
}

func (r *MemoryRegistry) CompareAndSwapStatus(id string, from, to Status, fn func(*Job)) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.Status != from {
		return Job{}, false
	}
	j.Status = to
	if fn != nil {
		fn(j)
	}
	return j.clone(), true
}

func (r *MemoryRegistry) List() []Job {
	r.mu.RLock()
	result := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		result = append(result, j.clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, k int) bool {
		if !result[i].CreatedAt.Equal(result[k].CreatedAt) {
			return result[i].CreatedAt.After(result[k].CreatedAt)
		}
		return result[i].ID < result[k].ID
	})
	return result
}

func (r *MemoryRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// purgeFinished removes terminal jobs that finished before cutoff and
// returns how many were removed.
func purgeFinished(reg JobRegistry, cutoff time.Time) int {
	n := 0
	for _, j := range reg.List() {
		if j.Status.Terminal() && j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			reg.Delete(j.ID)
			n++
		}
	}
	return n
}
