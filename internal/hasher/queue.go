package hasher

import "container/heap"

// jobQueue is a max-priority queue over pending scan and digest jobs. Ties
// within the same kind are unordered; insertion order carries no meaning.
type jobQueue struct {
	heap jobHeap
}

func newJobQueue(jobs []job) *jobQueue {
	q := &jobQueue{heap: append(jobHeap(nil), jobs...)}
	heap.Init(&q.heap)
	return q
}

func (q *jobQueue) push(j job) {
	heap.Push(&q.heap, j)
}

func (q *jobQueue) pop() job {
	return heap.Pop(&q.heap).(job)
}

// peek returns the highest-priority pending job without removing it, so the
// coordinator can attempt a non-blocking dispatch and keep the job queued if
// every worker channel is full.
func (q *jobQueue) peek() job { return q.heap[0] }

func (q *jobQueue) len() int { return len(q.heap) }

type jobHeap []job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].priority() > h[j].priority() }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)         { *h = append(*h, x.(job)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
