package lrureap

// The recency order is kept as a ring headed by mru.
// Walking forward from mru visits pages from most to least
// recently used, so the least recently used page is mru.Prev().

func (c *Cache[Key, Value]) lru() *page[Key, Value] {
	return c.mru.Prev()
}

func (c *Cache[Key, Value]) pushFront(page *page[Key, Value]) {
	if c.mru != nil {
		c.mru.Prev().Link(page)
	}
	c.mru = page
}

func (c *Cache[Key, Value]) moveToFront(page *page[Key, Value]) {
	switch page {
	case c.mru:
		return
	case c.lru():
		// Rotating the ring promotes the tail without relinking.
		c.mru = page
		return
	}
	c.lru().Link(page.Detach())
	c.mru = page
}

func (c *Cache[Key, Value]) unlink(page *page[Key, Value]) {
	if page == c.mru {
		if next := page.Next(); next != page {
			c.mru = next
		} else {
			c.mru = nil
		}
	}
	page.Detach()
}
