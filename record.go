package statekeep

import (
	"maps"
	"slices"
	"sync"
)

// Fields is a detached copy of a Record's contents.
type Fields map[string]Scalar

// Clone returns an independent copy. Scalars are values, so a map copy is
// already deep.
func (f Fields) Clone() Fields {
	return maps.Clone(f)
}

// Record provides thread-safe keyed scalar storage for an entity's
// intrinsic state. It is an Originator[Fields], so a History can snapshot
// and restore it directly.
type Record struct {
	mu     sync.RWMutex
	data   Fields
	accept func(Fields) error
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{data: make(Fields)}
}

// Get retrieves a value by key.
func (r *Record) Get(key string) (Scalar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	return v, ok
}

// Set stores a value by key.
func (r *Record) Set(key string, value Scalar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = value
}

// Delete removes a key from the record.
func (r *Record) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Keys returns the keys in sorted order.
func (r *Record) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.data))
}

// Accept installs a check that ApplyState runs before replacing the data.
// A nil check accepts everything.
func (r *Record) Accept(check func(Fields) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accept = check
}

// CaptureState returns a copy of all data.
func (r *Record) CaptureState() (Fields, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Clone(), nil
}

// ApplyState atomically replaces all data with a copy of f, unless the
// installed check rejects it.
// The check runs without the lock held, so it may read r.
func (r *Record) ApplyState(f Fields) error {
	r.mu.RLock()
	accept := r.accept
	r.mu.RUnlock()
	if accept != nil {
		if err := accept(f); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = f.Clone()
	if r.data == nil {
		r.data = make(Fields)
	}
	return nil
}
