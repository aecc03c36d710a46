package utils

import (
	"math/bits"
	"sync"
)

const (
	minClassShift = 6  // 64 B
	maxClassShift = 20 // 1 MiB
	numClasses    = maxClassShift - minClassShift + 1
)

// MaxPooledSize is the largest buffer the pool recycles.
const MaxPooledSize = 1 << maxClassShift

// ClassSize returns the capacity of size class idx.
func ClassSize(idx int) int {
	return 1 << (idx + minClassShift)
}

// SizeIndex returns the smallest class holding n bytes, or -1 when n is out of range.
func SizeIndex(n int) int {
	if n <= 0 || n > MaxPooledSize {
		return -1
	}
	idx := bits.Len(uint(n-1)) - minClassShift
	if idx < 0 {
		return 0
	}
	return idx
}

// BufferPool recycles power-of-two byte slices. Packet stores are drawn from
// it so that growth and release hand memory back instead of leaving it to GC.
type BufferPool struct {
	pools [numClasses]sync.Pool
}

func NewBufferPool() *BufferPool {
	var bp BufferPool
	for i := range bp.pools {
		size := ClassSize(i)
		bp.pools[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}
	return &bp
}

// Default is the process-wide pool used when no pool is configured.
var Default = NewBufferPool()

// Acquire returns a buffer of length n. Its capacity is the class size, so
// callers may reslice up to cap. Requests above MaxPooledSize are allocated
// directly.
func (bp *BufferPool) Acquire(n int) []byte {
	idx := SizeIndex(n)
	if idx < 0 {
		return make([]byte, n)
	}
	bufPtr := bp.pools[idx].Get().(*[]byte)
	return (*bufPtr)[:n]
}

// AcquireZeroed is Acquire with the whole capacity cleared.
func (bp *BufferPool) AcquireZeroed(n int) []byte {
	buf := bp.Acquire(n)
	clear(buf[:cap(buf)])
	return buf
}

// Release returns buf to its class. Buffers whose capacity is not exactly a
// class size are dropped.
func (bp *BufferPool) Release(buf []byte) {
	c := cap(buf)
	if c < ClassSize(0) || c > MaxPooledSize || c&(c-1) != 0 {
		return
	}
	idx := bits.Len(uint(c)) - 1 - minClassShift
	buf = buf[:c]
	bp.pools[idx].Put(&buf)
}
