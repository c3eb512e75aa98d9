package lrureap

import "fmt"

// verify returns an error describing the first broken
// invariant between the index, recency ring, and frequency tracker.
// Caller must hold the lock.
func (c *Cache[Key, Value]) verify() error {
	resident := len(c.index)
	if resident > c.capacity {
		return fmt.Errorf("index holds %d pages but capacity is %d",
			resident, c.capacity)
	}
	if stacked := c.mru.Len(); stacked != resident {
		return fmt.Errorf("ring holds %d pages but index holds %d",
			stacked, resident)
	}
	for page := range c.mru.All() {
		if c.index[page.Key] != page {
			return fmt.Errorf("ring page %v is not the indexed page", page.Key)
		}
	}
	if tracked := c.frequency.Len(); tracked != resident {
		return fmt.Errorf("frequency tracks %d keys but index holds %d",
			tracked, resident)
	}
	for key := range c.frequency.Keys() {
		if _, ok := c.index[key]; !ok {
			return fmt.Errorf("frequency tracks %v which is not resident", key)
		}
	}
	return nil
}

func (c *Cache[_, _]) assertInvariants() {
	if err := c.verify(); err != nil {
		assert(false, err.Error())
	}
}
