package pds

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// copyMapped copies src into dst where src is memory-mapped file data.
// Pages of a mapping past the current end of file fault when touched;
// such a fault is reported as io.ErrUnexpectedEOF instead of crashing.
func copyMapped(dst, src []byte, off int64) (n int, err error) {
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(runtime.Error); !ok {
			panic(r)
		}
		n = 0
		err = fmt.Errorf("pds: mapped file shrank below offset %d: %w", off, io.ErrUnexpectedEOF)
	}()
	return copy(dst, src), nil
}
