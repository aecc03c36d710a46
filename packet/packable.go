package packet

// Packable is a field value that knows its encoded width and can write
// itself. Write stores the value at buf[pos:] and returns the end position.
type Packable interface {
	ValueSize() int
	Write(buf []byte, pos int) int
}
