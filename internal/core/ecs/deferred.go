package ecs

// MarkForRelease queues h for release at the end of the tick. The record stays
// resolvable until Flush, so scans in progress are never invalidated.
func (p *Pool[T]) MarkForRelease(h Handle) {
	for _, q := range p.pending {
		if q == h {
			return
		}
	}
	p.pending = append(p.pending, h)
}

// Pending returns the number of queued releases.
func (p *Pool[T]) Pending() int { return len(p.pending) }

// Flush releases every queued handle and returns how many were still live.
// Called by CleanupSystem at the end of each tick.
func (p *Pool[T]) Flush() int {
	n := 0
	for _, h := range p.pending {
		if p.Release(h) {
			n++
		}
	}
	p.pending = p.pending[:0]
	return n
}
