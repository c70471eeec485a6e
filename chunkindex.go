package partfile

import "sync"

// chunkIndex maps a logical chunk id to the ordinal position at which that
// chunk was appended to the container. It is safe for one writer and
// many concurrent readers: Set is only ever called from the writer path
// (already serialized by Partfile's write lock), Get is lock-free from the
// writer's perspective and RLock-guarded against concurrent Sets.
//
// The writer publishes an index entry only after the chunk's payload bytes
// are durable on disk (flushed if configured), so a reader that observes an
// id in the index can always read its full payload — see store.go.
type chunkIndex struct {
	mu sync.RWMutex
	m  map[int32]int32
}

func newChunkIndex() *chunkIndex {
	return &chunkIndex{m: make(map[int32]int32)}
}

// Get returns the ordinal for id and whether it was present.
func (c *chunkIndex) Get(id int32) (int32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.m[id]
	return pos, ok
}

// Has reports whether id has been written.
func (c *chunkIndex) Has(id int32) bool {
	_, ok := c.Get(id)
	return ok
}

// Set records that id was appended at ordinal pos. Callers must serialize
// Set against other Sets themselves (the write path does, via Partfile's
// write lock).
func (c *chunkIndex) Set(id, pos int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[id] = pos
}

// Len returns the number of chunks currently indexed.
func (c *chunkIndex) Len() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int32(len(c.m))
}

// Delete removes id from the index. Neither the write path nor
// OpenExisting calls it; it exists for symmetry with Set.
func (c *chunkIndex) Delete(id int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, id)
}
