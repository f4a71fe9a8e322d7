package pgadaptor

import "sync"

const bindChunkSize = 4096

var bindChunkPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, bindChunkSize)
	},
}

// bindArena hands out parameter buffers for a single statement call. Slices
// handed out are never moved, so a chunk is only appended to while it has
// room. Everything goes back to the pool on release.
type bindArena struct {
	chunks [][]byte
}

func newBindArena() *bindArena {
	return &bindArena{}
}

// alloc returns a slice of exactly n bytes. Its contents are unspecified.
func (a *bindArena) alloc(n int) []byte {
	if a == nil {
		return make([]byte, n)
	}
	if n > bindChunkSize/2 {
		return make([]byte, n)
	}
	if len(a.chunks) > 0 {
		last := a.chunks[len(a.chunks)-1]
		if cap(last)-len(last) >= n {
			start := len(last)
			last = last[:start+n]
			a.chunks[len(a.chunks)-1] = last
			return last[start : start+n : start+n]
		}
	}
	chunk := bindChunkPool.Get().([]byte)[:n]
	a.chunks = append(a.chunks, chunk)
	return chunk[:n:n]
}

// release returns all chunks to the pool. The arena must not be used afterwards.
func (a *bindArena) release() {
	if a == nil {
		return
	}
	for _, chunk := range a.chunks {
		bindChunkPool.Put(chunk[:0])
	}
	a.chunks = nil
}
