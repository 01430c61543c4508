package navigation

import "github.com/l1jgo/towerdef/internal/geom"

type node struct {
	cell     geom.Cell
	from     geom.Cell
	distance float64
}

// nodeQueue is a growable FIFO ring buffer owned by a FlowField and reused
// across rebuilds. pop returns nodes by value.
type nodeQueue struct {
	buf  []node
	head int
	size int
}

func newNodeQueue(capacity int) nodeQueue {
	if capacity < 16 {
		capacity = 16
	}
	return nodeQueue{buf: make([]node, capacity)}
}

func (q *nodeQueue) reset() {
	q.head = 0
	q.size = 0
}

func (q *nodeQueue) len() int { return q.size }

func (q *nodeQueue) push(n node) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = n
	q.size++
}

func (q *nodeQueue) pop() (node, bool) {
	if q.size == 0 {
		return node{}, false
	}
	n := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return n, true
}

func (q *nodeQueue) grow() {
	buf := make([]node, len(q.buf)*2)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
