// Package buffer implements the host-owned byte records that back guest
// streams.
package buffer

// Buffer is a growable contiguous byte arena with an explicit length.
//
// Positional writes follow stdio semantics on a file opened for update:
// appending, overwriting in place, or growing past the end with a zero-filled
// gap. Every mutation completes within the call that requested it, so a
// subsequent Fetch, Len or Bytes always observes the whole write.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data []byte
}

// New returns a Buffer holding a copy of b.
func New(b []byte) *Buffer {
	return &Buffer{data: append([]byte(nil), b...)}
}

// Len returns the current length in bytes.
func (b *Buffer) Len() uint64 {
	return uint64(len(b.data))
}

// Bytes returns a copy of the content.
func (b *Buffer) Bytes() []byte {
	return append([]byte{}, b.data...)
}

// Truncate discards all content.
func (b *Buffer) Truncate() {
	b.data = nil
}

// Fetch returns a view of at most n bytes starting at pos. Reading past the
// end yields fewer bytes than requested, possibly none.
//
// The result aliases the buffer and is only valid until the next mutation.
func (b *Buffer) Fetch(pos uint64, n uint32) []byte {
	size := b.Len()
	if pos >= size {
		return nil
	}
	end := pos + uint64(n)
	if end > size {
		end = size
	}
	return b.data[pos:end]
}

// Flush writes chunk at pos. A negative pos, or one equal to Len, appends.
// A pos inside the buffer overwrites in place, extending the buffer when
// chunk runs past the end. A pos beyond the end first fills the gap with
// zeros.
//
// Flush does not bound the resulting length; check SizeAfter first.
func (b *Buffer) Flush(chunk []byte, pos int64) {
	size := int64(len(b.data))
	switch {
	case pos < 0 || pos == size:
		b.data = append(b.data, chunk...)
	case pos < size:
		if end := pos + int64(len(chunk)); end <= size {
			copy(b.data[pos:end], chunk)
		} else {
			b.data = append(b.data[:pos], chunk...)
		}
	default:
		b.data = append(b.data, make([]byte, pos-size)...)
		b.data = append(b.data, chunk...)
	}
}

// SizeAfter returns the length the buffer would have after Flush(chunk, pos)
// with a chunk of n bytes.
func (b *Buffer) SizeAfter(n uint32, pos int64) uint64 {
	size := b.Len()
	if pos < 0 {
		return size + uint64(n)
	}
	if end := uint64(pos) + uint64(n); end > size {
		return end
	}
	return size
}
