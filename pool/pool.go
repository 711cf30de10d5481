// Package pool provides a bounded scheduler for background tasks with
// non-blocking result harvesting. Results are never lost: every Spawn
// eventually yields exactly one Result, visible from Results() for the
// lifetime of the pool whether the caller polls before or after the task
// finishes.
package pool

import (
	"sync"

	"github.com/joy-dx/lockablemap"
)

// Result is the outcome of one spawned task.
type Result struct {
	Err   error
	Value any
}

// Pool runs spawned funcs against a bounded set of workers. With a
// concurrency of one or less there is no backing scheduler and Spawn
// executes the func inline before returning.
type Pool struct {
	sem     chan struct{}
	wg      sync.WaitGroup
	results *lockablemap.LockableMap[string, Result]
}

func New(concurrency int) *Pool {
	p := &Pool{
		results: lockablemap.NewLockableMap[string, Result](),
	}
	if concurrency > 1 {
		p.sem = make(chan struct{}, concurrency)
	}
	return p
}

// Spawn schedules fn under the given identifier. It returns immediately
// unless the pool is saturated, in which case it blocks until a worker
// slot frees up. Identifiers must be unique per pool instance; a repeat
// identifier overwrites the earlier result.
func (p *Pool) Spawn(ident string, fn func() (any, error)) {
	if p.sem == nil {
		value, err := fn()
		p.results.Set(ident, Result{Err: err, Value: value})
		return
	}

	p.sem <- struct{}{}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		value, err := fn()
		p.results.Set(ident, Result{Err: err, Value: value})
	}()
}

// Results returns every outcome recorded so far, keyed by the identifiers
// given to Spawn. It never blocks; tasks still running are simply absent
// until they finish. Previously drained results remain visible.
func (p *Pool) Results() map[string]Result {
	return p.results.GetAll()
}

// Join blocks until every spawned task has completed.
func (p *Pool) Join() {
	p.wg.Wait()
}
