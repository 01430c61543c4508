package ecs

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Generations start at 1, so the zero Handle never resolves.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

type slot[T any] struct {
	generation uint32
	live       bool
	record     T
}

// Pool is a fixed-capacity slot array with a free list and per-slot generations.
// A slot's generation is bumped on Acquire, never on Release, so a handle issued
// before a release cannot resolve the record created after it.
// Accessed only from the simulation goroutine.
type Pool[T any] struct {
	slots     []slot[T]
	freeList  []uint32
	nextIndex uint32
	live      int
	pending   []Handle
}

func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{
		slots:    make([]slot[T], capacity),
		freeList: make([]uint32, 0, capacity),
		pending:  make([]Handle, 0, 16),
	}
}

// Acquire returns a fresh zeroed record. Released slots are reused before the
// live range grows; ok is false when the pool is exhausted.
func (p *Pool[T]) Acquire() (Handle, *T, bool) {
	var idx uint32
	switch {
	case len(p.freeList) > 0:
		idx = p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
	case int(p.nextIndex) < len(p.slots):
		idx = p.nextIndex
		p.nextIndex++
	default:
		return 0, nil, false
	}

	s := &p.slots[idx]
	s.generation++
	s.live = true
	var zero T
	s.record = zero
	p.live++
	return NewHandle(idx, s.generation), &s.record, true
}

// Resolve returns the live record behind h, or false for stale and invalid handles.
func (p *Pool[T]) Resolve(h Handle) (*T, bool) {
	idx := h.Index()
	if idx >= p.nextIndex {
		return nil, false
	}
	s := &p.slots[idx]
	if !s.live || s.generation != h.Generation() {
		return nil, false
	}
	return &s.record, true
}

// Alive reports whether h still resolves.
func (p *Pool[T]) Alive(h Handle) bool {
	_, ok := p.Resolve(h)
	return ok
}

// Release marks the slot of h empty. Returns false if h was already stale.
func (p *Pool[T]) Release(h Handle) bool {
	idx := h.Index()
	if idx >= p.nextIndex {
		return false
	}
	s := &p.slots[idx]
	if !s.live || s.generation != h.Generation() {
		return false // already released (stale reference)
	}
	s.live = false
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

// Each visits live records in slot order. fn may release any handle, including
// the one being visited; released slots later in the order are skipped.
func (p *Pool[T]) Each(fn func(Handle, *T)) {
	for i := uint32(0); i < p.nextIndex; i++ {
		s := &p.slots[i]
		if !s.live {
			continue
		}
		fn(NewHandle(i, s.generation), &s.record)
	}
}

// Live returns the number of live records.
func (p *Pool[T]) Live() int { return p.live }

// Cap returns the fixed capacity.
func (p *Pool[T]) Cap() int { return len(p.slots) }
