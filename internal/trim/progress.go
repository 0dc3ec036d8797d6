package trim

import (
	"sync"
	"time"
)

// reporter counts finished ions and forwards progress to an observer. It is
// shared by all partitions of a run; the mutex serializes observer calls.
type reporter struct {
	mu    sync.Mutex
	obs   Observer
	start time.Time
	total int
	every int
	done  int
	next  int
	last  int
}

func newReporter(obs Observer, total, every int) *reporter {
	if every < 1 {
		every = 1
	}
	return &reporter{obs: obs, start: time.Now(), total: total, every: every, next: every, last: -1}
}

func (r *reporter) add(n int) {
	if r == nil || n == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.done += n
	if r.done >= r.next {
		r.next = (r.done/r.every + 1) * r.every
		r.notify()
	}
}

// finish sends the completion notification unless it was already sent.
func (r *reporter) finish() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != r.done {
		r.notify()
	}
}

func (r *reporter) notify() {
	r.last = r.done
	if r.obs == nil {
		return
	}
	r.obs.OnProgress(Progress{Done: r.done, Total: r.total, Elapsed: time.Since(r.start)})
}
