package pds

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// ParallelConfig sizes the worker pool behind ReadFrames and the frame
// exporters.
type ParallelConfig struct {
	// NumWorkers is the goroutine count; 0 uses GOMAXPROCS.
	NumWorkers int

	// GrainSize is the number of frames a worker must get before the pool
	// is used at all; smaller jobs run on the calling goroutine.
	GrainSize int
}

// DefaultParallelConfig uses every CPU and parallelises any job with more
// frames than workers.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{GrainSize: 1}
}

// Workers returns the goroutine count c resolves to.
func (c ParallelConfig) Workers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return runtime.GOMAXPROCS(0)
}

var (
	poolMu     sync.RWMutex
	poolConfig = DefaultParallelConfig()
)

// SetParallelConfig replaces the process-wide pool configuration.
func SetParallelConfig(c ParallelConfig) {
	poolMu.Lock()
	poolConfig = c
	poolMu.Unlock()
}

// GetParallelConfig returns the process-wide pool configuration.
func GetParallelConfig() ParallelConfig {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return poolConfig
}

// ParallelForWithError calls fn for every i in [0, n) and returns the
// first error. Workers take the next unclaimed index, so frames that are
// slow to encode do not hold up a fixed share of the job. Once fn fails
// no further indices are started.
func ParallelForWithError(n int, fn func(i int) error) error {
	cfg := GetParallelConfig()
	workers := cfg.Workers()
	if workers == 1 || n <= cfg.GrainSize*workers {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	if workers > n {
		workers = n
	}

	var (
		next     atomic.Int64
		stopped  atomic.Bool
		firstErr error
		once     sync.Once
		wg       sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for !stopped.Load() {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				if err := fn(i); err != nil {
					once.Do(func() { firstErr = err })
					stopped.Store(true)
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// ReadFrames reads the given frames using positional reads spread over
// the worker pool. It does not move the movie's cursor, but the Movie
// itself must still not be shared between goroutines.
func (m *Movie) ReadFrames(indices []int) ([]*Frame, error) {
	for _, i := range indices {
		if err := m.checkIndex(i); err != nil {
			return nil, err
		}
	}

	frames := make([]*Frame, len(indices))
	err := ParallelForWithError(len(indices), func(k int) error {
		f := NewFrame(m.layout.Width, m.layout.Height, m.layout.BytesPerSample)
		off := m.layout.PixelOffset(indices[k])
		n, err := m.r.ReadAt(f.Pix, off)
		if n == len(f.Pix) {
			err = nil
		} else if err == nil {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return &IOError{Op: "read frame", Offset: off, Err: err}
		}
		frames[k] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}
