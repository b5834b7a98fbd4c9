package wrangler

import "wrangle/internal/table"

// Collection holds cleaned tables keyed by their source-derived key.
// Keys iterate in insertion order, which the pipeline makes equal to
// enumeration order.
type Collection struct {
	keys   []string
	tables map[string]*table.Table
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{tables: map[string]*table.Table{}}
}

// Put stores t under key. It reports false, leaving the collection
// unchanged, when key is already present.
func (c *Collection) Put(key string, t *table.Table) bool {
	if _, ok := c.tables[key]; ok {
		return false
	}
	c.keys = append(c.keys, key)
	c.tables[key] = t
	return true
}

// Get returns the table stored under key.
func (c *Collection) Get(key string) (*table.Table, bool) {
	t, ok := c.tables[key]
	return t, ok
}

// Keys returns the keys in insertion order.
func (c *Collection) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of tables.
func (c *Collection) Len() int { return len(c.keys) }
