package pds

// Cache memoises whole-movie reads of a Movie.
//
// A Movie never caches: every call re-reads the file. Wrap it in a Cache
// when the file is known not to change and the full stack or timestamp
// list is needed repeatedly. Single-frame reads pass through uncached.
type Cache struct {
	m     *Movie
	stack *Stack
	ts    []float32
}

// NewCache wraps m. The Cache does not own m; close m as usual.
func NewCache(m *Movie) *Cache {
	return &Cache{m: m}
}

// Movie returns the wrapped movie.
func (c *Cache) Movie() *Movie {
	return c.m
}

// Data returns the full stack, reading it on first use.
func (c *Cache) Data() (*Stack, error) {
	if c.stack != nil {
		return c.stack, nil
	}
	s, err := c.m.Data()
	if err != nil {
		return nil, err
	}
	c.stack = s
	return s, nil
}

// Timestamps returns all timestamps, reading them on first use.
func (c *Cache) Timestamps() ([]float32, error) {
	if c.ts != nil {
		return c.ts, nil
	}
	ts, err := c.m.Timestamps()
	if err != nil {
		return nil, err
	}
	c.ts = ts
	return ts, nil
}

// Frame returns a copy of frame i from the cached stack when present,
// otherwise it reads the frame from the movie. Changes to the returned
// frame never reach the cache.
func (c *Cache) Frame(i int) (*Frame, error) {
	if c.stack != nil {
		if err := c.m.checkIndex(i); err != nil {
			return nil, err
		}
		view := c.stack.Frame(i)
		f := NewFrame(view.Width, view.Height, view.BytesPerSample)
		copy(f.Pix, view.Pix)
		return f, nil
	}
	return c.m.Frame(i)
}

// Invalidate drops the cached data so the next call re-reads the file.
func (c *Cache) Invalidate() {
	c.stack = nil
	c.ts = nil
}
