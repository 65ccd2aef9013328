package motion

import (
	"sync"

	motionerrors "github.com/feral42/RepRapFirmware/pkg/errors"
)

// noFree is the free-list terminator: no valid record index is negative.
const noFree int32 = -1

// Pool is a fixed-capacity arena of DriveMovement records, allocated once
// at boot and handed out by index for the lifetime of the process. Unlike
// pkg/log or a sync.Pool-style cache, records here are never returned to
// the garbage collector: the step ISR must never trigger an allocation, so
// the backing slice is sized once by InitialAllocate and never grown.
//
// The allocator is only ever called from planner context, never from the
// step ISR (see CalcNextStepCartesian / CalcNextStepDelta). The mutex below
// is therefore not on the hot path; it serialises Allocate and Release so
// that callers on several goroutines (cmd/motion-sim prepares each drive on
// its own) cannot corrupt the free list.
type Pool struct {
	mu      sync.Mutex
	records []DriveMovement
	free    int32 // index of the head of the free list, or noFree
	numFree int
	minFree int
}

// NewPool creates an empty pool. Call InitialAllocate before use.
func NewPool() *Pool {
	return &Pool{free: noFree}
}

// InitialAllocate primes the pool with n pre-allocated records and resets
// the low-water mark. It must be called exactly once at startup, before any
// Allocate call; calling it again replaces the arena and invalidates any
// records handed out by the previous one.
func (p *Pool) InitialAllocate(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records = make([]DriveMovement, n)
	p.free = noFree
	for i := n - 1; i >= 0; i-- {
		p.records[i].next = p.free
		p.records[i].poolIndex = int32(i)
		p.free = int32(i)
	}
	p.numFree = n
	p.resetMinFreeLocked()
}

// ResetMinFree resets the low-water mark to the current free count, without
// disturbing any records currently in use. Used by callers that want to
// measure worst-case concurrent usage over a bounded window (e.g. one print).
func (p *Pool) ResetMinFree() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetMinFreeLocked()
}

func (p *Pool) resetMinFreeLocked() {
	p.minFree = p.numFree
}

// Allocate pops a record off the free list, stamps it with drive and state,
// and returns it. Returns (nil, error) if the pool is exhausted; callers
// must treat that as a hard planner error and abort the move.
func (p *Pool) Allocate(drive int, state DMState) (*DriveMovement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.free == noFree {
		return nil, motionerrors.MotionAllocExhaustedError(drive)
	}

	idx := p.free
	dm := &p.records[idx]
	p.free = dm.next
	p.numFree--
	if p.numFree < p.minFree {
		p.minFree = p.numFree
	}

	dm.reset()
	dm.Drive = drive
	dm.State = state
	return dm, nil
}

// Release returns a record to the free list. dm must not be used again by
// the caller once released; a planner-context update between moves is
// sequenced by releasing the record first and Allocate-ing a fresh one.
func (p *Pool) Release(dm *DriveMovement) {
	if dm == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	dm.State = Idle
	dm.next = p.free
	p.free = dm.poolIndex
	p.numFree++
}

// NumFree returns the number of records currently on the free list.
func (p *Pool) NumFree() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numFree
}

// MinFree returns the lowest free count observed since the last
// InitialAllocate or ResetMinFree call, for capacity tuning.
func (p *Pool) MinFree() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minFree
}
