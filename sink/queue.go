// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sync"
	"time"

	"github.com/ik5/audxcode/audio"
)

// queue is a bounded ring of bytes. Push blocks while the ring is full and
// Pop never blocks, so Pop is safe to call from an audio callback.
type queue struct {
	mtx  sync.Mutex
	cond *sync.Cond

	buf   []byte
	start int
	size  int

	closed bool
}

func newQueue(capacity int) *queue {
	q := &queue{buf: make([]byte, max(capacity, 1))}
	q.cond = sync.NewCond(&q.mtx)
	return q
}

// Push appends p, waiting for room as needed. Bytes leave in the order they
// were pushed.
func (q *queue) Push(p []byte) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	for len(p) > 0 {
		for q.size == len(q.buf) && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			return audio.ErrClosed
		}

		end := (q.start + q.size) % len(q.buf)
		room := len(q.buf) - q.size
		if end+room > len(q.buf) {
			room = len(q.buf) - end
		}

		n := copy(q.buf[end:end+room], p)
		q.size += n
		p = p[n:]
	}

	return nil
}

// Pop moves up to len(dst) bytes into dst and returns how many it moved.
func (q *queue) Pop(dst []byte) int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	total := 0
	for total < len(dst) && q.size > 0 {
		chunk := min(q.size, len(q.buf)-q.start)
		n := copy(dst[total:], q.buf[q.start:q.start+chunk])
		q.start = (q.start + n) % len(q.buf)
		q.size -= n
		total += n
	}

	if total > 0 {
		q.cond.Broadcast()
	}

	return total
}

func (q *queue) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.size
}

// Drain waits until the queue is empty or timeout passes, and reports
// whether it emptied.
func (q *queue) Drain(timeout time.Duration) bool {
	expired := false
	timer := time.AfterFunc(timeout, func() {
		q.mtx.Lock()
		expired = true
		q.mtx.Unlock()
		q.cond.Broadcast()
	})
	defer timer.Stop()

	q.mtx.Lock()
	defer q.mtx.Unlock()

	for q.size > 0 && !q.closed && !expired {
		q.cond.Wait()
	}

	return q.size == 0
}

// Close wakes every waiter. Later pushes fail; queued bytes stay poppable.
func (q *queue) Close() {
	q.mtx.Lock()
	q.closed = true
	q.mtx.Unlock()

	q.cond.Broadcast()
}
