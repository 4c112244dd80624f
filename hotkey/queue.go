package hotkey

import "sync"

// edgeQueue is an unbounded FIFO between the observer goroutine and the
// consumer of Edges. push never blocks.
type edgeQueue struct {
	mu    sync.Mutex
	items []Edge
	wake  chan struct{}
	done  chan struct{}
	out   chan Edge
	once  sync.Once
}

func newEdgeQueue() *edgeQueue {
	q := &edgeQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Edge),
	}
	go q.run()
	return q
}

func (q *edgeQueue) push(e Edge) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *edgeQueue) pop() (Edge, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return 0, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, true
}

func (q *edgeQueue) run() {
	defer close(q.out)
	for {
		select {
		case <-q.wake:
		case <-q.done:
			return
		}
		for {
			e, ok := q.pop()
			if !ok {
				break
			}
			select {
			case q.out <- e:
			case <-q.done:
				return
			}
		}
	}
}

func (q *edgeQueue) close() {
	q.once.Do(func() { close(q.done) })
}
