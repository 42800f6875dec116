package shell

// LineBuffer accumulates the bytes of the line being typed.
type LineBuffer struct {
	buf [LineCapacity]byte
	n   int
}

// Append adds b at the end of the line. A full buffer rejects the byte.
func (l *LineBuffer) Append(b byte) error {
	if l.n == LineCapacity {
		return ErrLineFull
	}
	l.buf[l.n] = b
	l.n++
	return nil
}

// Backspace drops the last byte and reports whether there was one.
func (l *LineBuffer) Backspace() bool {
	if l.n == 0 {
		return false
	}
	l.n--
	l.buf[l.n] = 0
	return true
}

func (l *LineBuffer) Bytes() []byte {
	return l.buf[:l.n]
}

func (l *LineBuffer) Len() int {
	return l.n
}

// Reset empties the buffer and zeroes its bytes.
func (l *LineBuffer) Reset() {
	clear(l.buf[:l.n])
	l.n = 0
}
