// Package cache models the instruction prefetch path in front of the 8086
// memory plane using Akita cache components.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in clocks per access served entirely from the cache
	HitLatency uint64
	// MissLatency in clocks per line fetched from memory
	MissLatency uint64
}

// DefaultPrefetchConfig returns the default prefetch cache: 1 KiB, 2-way,
// 16-byte lines, with a miss costing one 4-clock bus cycle.
func DefaultPrefetchConfig() Config {
	return Config{
		Size:          1024,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    0,
		MissLatency:   4,
	}
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether every line of the access was cached.
	Hit bool
	// Latency is the number of clocks this access takes.
	Latency uint64
	// Lines is the number of cache lines the access touched.
	Lines int
	// Misses is the number of lines fetched from the backing store.
	Misses int
	// Evicted is true if a valid line was replaced.
	Evicted bool
}

// Cache is a read-only cache using an Akita directory for tags and LRU
// state.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	// Statistics
	stats Statistics

	// Backing store for fetching on miss
	backing BackingStore
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Clocks    uint64
}

// BackingStore is the memory behind the cache.
type BackingStore interface {
	// Read fetches size bytes starting at addr.
	Read(addr uint32, size int) []byte
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	size := uint64(c.config.BlockSize)
	return uint64(addr) / size * size
}

// Read fills buf with the bytes starting at addr, loading every line the
// range touches. The access counts as one read.
func (c *Cache) Read(addr uint32, buf []byte) AccessResult {
	c.stats.Reads++
	result := AccessResult{Hit: true}

	for pos := 0; pos < len(buf); {
		cur := addr + uint32(pos)
		line, evicted, hit := c.line(cur)
		result.Lines++
		if !hit {
			result.Hit = false
			result.Misses++
		}
		if evicted {
			result.Evicted = true
		}

		offset := int(uint64(cur) - c.blockAddr(cur))
		pos += copy(buf[pos:], line[offset:])
	}

	if result.Hit {
		c.stats.Hits++
		result.Latency = c.config.HitLatency
	} else {
		c.stats.Misses++
		result.Latency = uint64(result.Misses) * c.config.MissLatency
	}
	c.stats.Clocks += result.Latency
	return result
}

// line returns the cached data of the line holding addr, loading it on a
// miss.
func (c *Cache) line(addr uint32) (data []byte, evicted, hit bool) {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.directory.Visit(block)
		return c.dataStore[c.blockIndex(block)], false, true
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		// No way to allocate; serve the line uncached.
		data = make([]byte, c.config.BlockSize)
		if c.backing != nil {
			copy(data, c.backing.Read(uint32(blockAddr), c.config.BlockSize))
		}
		return data, false, false
	}
	data = c.dataStore[c.blockIndex(victim)]
	if victim.IsValid {
		c.stats.Evictions++
		evicted = true
	}

	if c.backing != nil {
		copy(data, c.backing.Read(uint32(blockAddr), c.config.BlockSize))
	} else {
		clear(data)
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return data, evicted, false
}

// Fetch fills buf from addr and returns the clocks the access took. It lets
// the cache serve as the BIU's prefetch source.
func (c *Cache) Fetch(addr uint32, buf []byte) int {
	return int(c.Read(addr, buf).Latency)
}

// Invalidate marks the cache line holding addr as invalid.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
