// Package deferq is a deferred-action queue: a priority queue of
// closures, split into two phases ("instructions" then "operands"),
// letting the core break cycles by materializing shell entities first
// and filling them in later.
package deferq

import "container/heap"

// Priority orders actions: every Instructions action runs before any
// Operands action. One extra priority is sufficient because type shells
// are produced synchronously in CloneType, never deferred.
type Priority int

const (
	PriorityInstructions Priority = iota
	PriorityOperands
)

type action struct {
	priority Priority
	seq      int
	run      func() error
}

type actionHeap []*action

func (h actionHeap) Len() int { return len(h) }
func (h actionHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h actionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *actionHeap) Push(x interface{}) {
	*h = append(*h, x.(*action))
}
func (h *actionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue is created empty per top-level entry call and drained to empty
// before that call returns.
type Queue struct {
	h   actionHeap
	seq int
}

// New builds an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue schedules run at the given priority. Actions may themselves
// enqueue further actions — Drain keeps pulling until the heap is empty,
// not just until the length at entry is exhausted.
func (q *Queue) Enqueue(p Priority, run func() error) {
	q.seq++
	heap.Push(&q.h, &action{priority: p, seq: q.seq, run: run})
}

// Empty reports whether the queue currently holds no pending actions.
func (q *Queue) Empty() bool { return q.h.Len() == 0 }

// Drain runs every pending action, lowest priority first (FIFO within a
// priority), stopping at the first error. The queue is guaranteed empty
// when Drain returns nil.
func (q *Queue) Drain() error {
	for q.h.Len() > 0 {
		a := heap.Pop(&q.h).(*action)
		if err := a.run(); err != nil {
			return err
		}
	}
	return nil
}
