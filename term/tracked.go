package term

import "sync"

// TrackedKind identifies the category of a refcounted tracked object.
type TrackedKind uint8

const (
	// TrackedKindHyperlink tags interned OSC 8 hyperlink targets.
	TrackedKindHyperlink TrackedKind = iota
	// TrackedKindSixelImage tags Sixel/Kitty image data referenced by cells.
	TrackedKindSixelImage
)

// TrackedHandle addresses one entry in a TrackedTable.
type TrackedHandle struct {
	Kind TrackedKind
	ID   uint32
}

type trackedEntry struct {
	value     any
	refCount  int
	onRelease func(any)
}

// TrackedTable refcounts interned objects that cells reference by ID rather
// than by storing a full copy. Only hyperlink targets are acquired through
// it; image data and placements are kept by ImageManager, not by this table.
// A cell write acquires a handle; the owner that retires a reference (a cell
// overwritten, a new hyperlink replacing the current one) releases it. An
// object is dropped from the table
// once its refcount reaches zero, running its onRelease callback if set.
//
// Acquire interns by an opaque string key so repeated OSC 8 sequences for the
// same URI share one entry instead of allocating duplicates.
type TrackedTable struct {
	mu      sync.Mutex
	entries map[TrackedHandle]*trackedEntry
	byKey   map[TrackedKind]map[string]uint32
	nextID  map[TrackedKind]uint32
}

// NewTrackedTable creates an empty tracked-object table.
func NewTrackedTable() *TrackedTable {
	return &TrackedTable{
		entries: make(map[TrackedHandle]*trackedEntry),
		byKey:   make(map[TrackedKind]map[string]uint32),
		nextID:  make(map[TrackedKind]uint32),
	}
}

// Acquire interns the value returned by factory under (kind, key), bumping
// its refcount if an entry already exists instead of calling factory again.
func (tt *TrackedTable) Acquire(kind TrackedKind, key string, factory func() any) TrackedHandle {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if tt.byKey[kind] == nil {
		tt.byKey[kind] = make(map[string]uint32)
	}
	if id, ok := tt.byKey[kind][key]; ok {
		h := TrackedHandle{Kind: kind, ID: id}
		if e, ok := tt.entries[h]; ok {
			e.refCount++
			return h
		}
	}

	tt.nextID[kind]++
	id := tt.nextID[kind]
	h := TrackedHandle{Kind: kind, ID: id}
	tt.entries[h] = &trackedEntry{value: factory(), refCount: 1}
	tt.byKey[kind][key] = id
	return h
}

// AcquireHandle bumps the refcount of an already-interned entry, for a new
// owner (e.g. another cell) that starts referencing the same object.
func (tt *TrackedTable) AcquireHandle(h TrackedHandle) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if e, ok := tt.entries[h]; ok {
		e.refCount++
	}
}

// Release drops one reference to h, removing the entry and firing its
// onRelease callback once the refcount reaches zero. Releasing a handle that
// is not present is a no-op.
func (tt *TrackedTable) Release(h TrackedHandle) {
	tt.mu.Lock()
	e, ok := tt.entries[h]
	if !ok {
		tt.mu.Unlock()
		return
	}
	e.refCount--
	if e.refCount > 0 {
		tt.mu.Unlock()
		return
	}
	delete(tt.entries, h)
	for _, m := range tt.byKey {
		for k, id := range m {
			if id == h.ID {
				delete(m, k)
			}
		}
	}
	onRelease := e.onRelease
	value := e.value
	tt.mu.Unlock()
	if onRelease != nil {
		onRelease(value)
	}
}

// Value returns the interned value for h, or nil if it is not present.
func (tt *TrackedTable) Value(h TrackedHandle) any {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if e, ok := tt.entries[h]; ok {
		return e.value
	}
	return nil
}

// RefCount returns the current refcount for h, or 0 if it is not present.
func (tt *TrackedTable) RefCount(h TrackedHandle) int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if e, ok := tt.entries[h]; ok {
		return e.refCount
	}
	return 0
}

// OnRelease registers a callback to run exactly once, when h's refcount
// drops to zero. Registering on a handle that is already gone is a no-op.
func (tt *TrackedTable) OnRelease(h TrackedHandle, fn func(any)) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if e, ok := tt.entries[h]; ok {
		e.onRelease = fn
	}
}

// Len returns the number of live entries, for tests and diagnostics.
func (tt *TrackedTable) Len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.entries)
}
