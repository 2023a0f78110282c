package ecsmeta

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work queued on a WorkerPool, paired with an opaque ctx
// at Queue time the same way a stored matching-function call is.
type Task func(ctx any)

type queuedTask struct {
	fn  Task
	ctx any
}

// cohort is one generation of goroutines spawned by Start. Each Start call
// gets a fresh cohort, so a task running inside one cohort can call Start
// again (a nested or re-entrant query) without deadlocking against the
// cohort that is already draining the queue.
type cohort struct {
	group *errgroup.Group
	done  chan struct{}
	err   error
}

func newCohort() *cohort {
	return &cohort{group: new(errgroup.Group), done: make(chan struct{})}
}

func (c *cohort) finished() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *cohort) wait() error {
	<-c.done
	return c.err
}

// WorkerPool is a FIFO task queue drained by a configurable number of
// goroutines. Queue is safe to call from any goroutine, including from
// inside a task running on the pool itself. Start spawns one cohort of
// workerCount goroutines to drain whatever is queued at that moment (and
// anything queued while they run); a count below 2 makes Start synchronous,
// draining the queue on the calling goroutine instead.
type WorkerPool struct {
	workerCount int

	mu    sync.Mutex
	queue []queuedTask

	cohortsMu sync.Mutex
	cohorts   []*cohort
}

// NewWorkerPool builds a pool that spawns workerCount goroutines per Start.
func NewWorkerPool(workerCount int) *WorkerPool {
	return &WorkerPool{workerCount: workerCount}
}

// Queue appends fn to the tail of the FIFO, to run with ctx once some cohort
// pulls it off the head.
func (p *WorkerPool) Queue(fn Task, ctx any) {
	p.mu.Lock()
	p.queue = append(p.queue, queuedTask{fn: fn, ctx: ctx})
	p.mu.Unlock()
}

func (p *WorkerPool) dequeue() (queuedTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return queuedTask{}, false
	}
	t := p.queue[0]
	p.queue = p.queue[1:]
	return t, true
}

// IsQueueEmpty reports whether the FIFO currently holds no tasks. A true
// result can go stale the instant another goroutine calls Queue.
func (p *WorkerPool) IsQueueEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue) == 0
}

// IsNotRunning reports whether every cohort this pool has ever started has
// finished draining the queue.
func (p *WorkerPool) IsNotRunning() bool {
	p.cohortsMu.Lock()
	defer p.cohortsMu.Unlock()
	p.gcCohorts()
	return len(p.cohorts) == 0
}

// gcCohorts drops finished cohorts off the head of the stack. Called with
// cohortsMu held, lazily on the next Start or IsNotRunning rather than
// eagerly on completion, so a cohort's goroutines never need to reach back into the
// pool to deregister themselves.
func (p *WorkerPool) gcCohorts() {
	for len(p.cohorts) > 0 && p.cohorts[0].finished() {
		p.cohorts = p.cohorts[1:]
	}
}

// Start spawns a fresh cohort of workerCount goroutines that drain the FIFO
// until it's empty, then exit. It does not wait for them; use
// EasyStartAndWait or Close to block.
func (p *WorkerPool) Start() {
	p.startCohort()
}

func (p *WorkerPool) startCohort() *cohort {
	if p.workerCount < 2 {
		for {
			t, ok := p.dequeue()
			if !ok {
				return nil
			}
			t.fn(t.ctx)
		}
	}

	p.cohortsMu.Lock()
	p.gcCohorts()
	c := newCohort()
	p.cohorts = append(p.cohorts, c)
	p.cohortsMu.Unlock()

	for i := 0; i < p.workerCount; i++ {
		c.group.Go(func() error {
			for {
				t, ok := p.dequeue()
				if !ok {
					return nil
				}
				t.fn(t.ctx)
			}
		})
	}
	go func() {
		c.err = c.group.Wait()
		close(c.done)
	}()
	return c
}

// EasyStartAndWait starts a fresh cohort and blocks until it has drained the
// queue down to whatever was left once every worker in this cohort found it
// empty. For a synchronous pool (workerCount < 2) the queue is already fully
// drained by the time this returns.
func (p *WorkerPool) EasyStartAndWait() {
	c := p.startCohort()
	if c == nil {
		return
	}
	c.wait()
}

// Close blocks until every cohort this pool has ever started has finished.
// Go has no destructors, so a pool that outlives its last use should have
// Close called on it explicitly to get the "never detaches silently"
// guarantee a C++ destructor would give for free.
func (p *WorkerPool) Close() {
	for !p.IsNotRunning() {
		time.Sleep(time.Millisecond)
	}
}
