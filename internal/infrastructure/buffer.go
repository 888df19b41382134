package infrastructure

import "fmt"

// initialBufferCap is the first reservation made by an empty RequestBuffer
const initialBufferCap = 256

// RequestBuffer is an append-only byte accumulator used to assemble the
// handshake request. Capacity starts at 256 bytes and doubles until the
// pending append fits.
type RequestBuffer struct {
	data []byte
}

// reserve makes room for needed bytes in total
func (b *RequestBuffer) reserve(needed int) {
	if needed <= cap(b.data) {
		return
	}
	newCap := cap(b.data) * 2
	if newCap == 0 {
		newCap = initialBufferCap
	}
	for newCap < needed {
		newCap *= 2
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// Append appends s to the buffer
func (b *RequestBuffer) Append(s string) {
	b.reserve(len(b.data) + len(s))
	b.data = append(b.data, s...)
}

// AppendBytes appends p to the buffer
func (b *RequestBuffer) AppendBytes(p []byte) {
	b.reserve(len(b.data) + len(p))
	b.data = append(b.data, p...)
}

// Appendf formats according to a format specifier and appends the result
func (b *RequestBuffer) Appendf(format string, args ...any) {
	b.Append(fmt.Sprintf(format, args...))
}

// Len returns the number of accumulated bytes
func (b *RequestBuffer) Len() int {
	return len(b.data)
}

// Cap returns the current capacity
func (b *RequestBuffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the accumulated bytes. The slice is valid until the next
// Append or Reset.
func (b *RequestBuffer) Bytes() []byte {
	return b.data
}

// String returns the accumulated bytes as a string
func (b *RequestBuffer) String() string {
	return string(b.data)
}

// Reset releases the storage
func (b *RequestBuffer) Reset() {
	b.data = nil
}
