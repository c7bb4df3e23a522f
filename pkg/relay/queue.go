package relay

import "sync"

// queue is a bounded receive buffer shared by a producer goroutine and the
// non-blocking Read of a channel.
type queue struct {
	mu   sync.Mutex
	buf  []byte
	size int
	full bool
}

func newQueue(size int) *queue {
	return &queue{buf: make([]byte, 0, size), size: size}
}

// push appends p and returns how many bytes fit. Bytes that do not fit are
// lost and reported by the next pop.
func (q *queue) push(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.size - len(q.buf)
	if n > len(p) {
		n = len(p)
	}
	q.buf = append(q.buf, p[:n]...)
	if n < len(p) {
		q.full = true
	}
	return n
}

// pop moves up to len(p) buffered bytes into p.
func (q *queue) pop(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.full {
		q.full = false
		return 0, ErrBufferFull
	}
	n := copy(p, q.buf)
	q.buf = q.buf[:copy(q.buf, q.buf[n:])]
	return n, nil
}

func (q *queue) reset() {
	q.mu.Lock()
	q.buf = q.buf[:0]
	q.full = false
	q.mu.Unlock()
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
