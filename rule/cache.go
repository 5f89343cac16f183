package rule

import "sync"

// Cache memoizes decoded tables for the lifetime of a batch run. The zero
// value is ready to use and safe for concurrent use. Ownership of the cache
// belongs to whatever drives the batch; there is no package-level instance.
type Cache struct {
	mu     sync.Mutex
	tables map[int]Table
}

// Get returns the decoded table for id, decoding it on first use.
func (c *Cache) Get(id int) (Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[id]; ok {
		return t, nil
	}
	t, err := Decode(id)
	if err != nil {
		return Table{}, err
	}
	if c.tables == nil {
		c.tables = make(map[int]Table, 256)
	}
	c.tables[id] = t
	return t, nil
}

// Len reports how many tables have been decoded so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tables)
}
