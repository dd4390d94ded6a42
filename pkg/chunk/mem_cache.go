// pkg/chunk/mem_cache.go

package chunk

type memItem struct {
	atime uint64
	chunk *Chunk
}

// Cache keeps recently used chunks mapped. It holds its own reference to
// every chunk and evicts the least recently used one beyond capacity.
// Not safe for concurrent use; the mapper owns it on a single goroutine.
type Cache struct {
	capacity int
	clock    uint64
	used     int64
	chunks   map[int]memItem
}

func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		chunks:   make(map[int]memItem),
	}
}

// Len returns the number of cached chunks.
func (c *Cache) Len() int {
	return len(c.chunks)
}

// UsedMemory returns the mapped bytes held by the cache.
func (c *Cache) UsedMemory() int64 {
	return c.used
}

// Put caches ch. The caller keeps its own reference. It returns false if
// the cache took no reference to ch.
func (c *Cache) Put(ch *Chunk) bool {
	if c.capacity <= 0 {
		return false
	}
	if _, ok := c.chunks[ch.Nr]; ok {
		return false
	}
	ch.Acquire()
	c.clock++
	c.chunks[ch.Nr] = memItem{c.clock, ch}
	c.used += int64(ch.Len())
	if len(c.chunks) > c.capacity {
		c.cleanup()
	}
	return true
}

// Get returns the cached chunk nr or nil. The cache keeps the reference.
func (c *Cache) Get(nr int) *Chunk {
	item, ok := c.chunks[nr]
	if !ok {
		return nil
	}
	c.clock++
	c.chunks[nr] = memItem{c.clock, item.chunk}
	return item.chunk
}

// Take removes chunk nr from the cache and hands its reference to the caller.
func (c *Cache) Take(nr int) *Chunk {
	item, ok := c.chunks[nr]
	if !ok {
		return nil
	}
	c.used -= int64(item.chunk.Len())
	delete(c.chunks, nr)
	return item.chunk
}

// Remove evicts chunk nr.
func (c *Cache) Remove(nr int) {
	if item, ok := c.chunks[nr]; ok {
		c.delete(nr, item.chunk)
		logger.Debugf("remove chunk %d from cache", nr)
	}
}

// Clear evicts everything.
func (c *Cache) Clear() {
	for nr, item := range c.chunks {
		c.delete(nr, item.chunk)
	}
}

func (c *Cache) delete(nr int, ch *Chunk) {
	c.used -= int64(ch.Len())
	ch.Release()
	delete(c.chunks, nr)
}

func (c *Cache) cleanup() {
	for len(c.chunks) > c.capacity {
		oldest := -1
		var atime uint64
		for nr, item := range c.chunks {
			if oldest < 0 || item.atime < atime {
				oldest, atime = nr, item.atime
			}
		}
		logger.Debugf("evict chunk %d from cache, age: %d", oldest, c.clock-atime)
		c.delete(oldest, c.chunks[oldest].chunk)
	}
}
