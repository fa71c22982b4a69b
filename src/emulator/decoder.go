package emulator

import "unicode/utf8"

// DecodeStatus is the result of feeding one byte to a Decoder.
type DecodeStatus uint8

const (
	// DecodeReady means a complete scalar was produced.
	DecodeReady DecodeStatus = iota
	// DecodeIncomplete means more continuation bytes are needed.
	DecodeIncomplete
	// DecodeInvalid means the accumulated bytes do not form a valid
	// scalar. Callers drop these silently.
	DecodeInvalid
)

// Decoder is an incremental UTF-8 decoder. It holds at most one partial
// sequence between calls, so codepoints split across independent PTY
// reads decode exactly as if fed in one chunk.
type Decoder struct {
	buf  [4]byte
	n    int // bytes accumulated
	need int // total bytes in the current sequence (0 = none pending)
}

// Pending returns true while continuation bytes are outstanding.
func (d *Decoder) Pending() bool {
	return d.need > 0
}

// Reset discards any partial sequence.
func (d *Decoder) Reset() {
	d.n = 0
	d.need = 0
}

// Feed consumes one byte. ASCII decodes immediately. A non-continuation
// byte arriving mid-sequence discards the pending bytes and is taken as
// fresh input rather than corrupting or blocking the stream.
func (d *Decoder) Feed(b byte) (rune, DecodeStatus) {
	if d.need > 0 {
		if b >= 0x80 && b < 0xC0 { // Valid continuation byte
			d.buf[d.n] = b
			d.n++
			if d.n < d.need {
				return 0, DecodeIncomplete
			}
			r, size := utf8.DecodeRune(d.buf[:d.n])
			d.Reset()
			if r == utf8.RuneError && size <= 1 {
				return 0, DecodeInvalid
			}
			return r, DecodeReady
		}
		d.Reset()
		return d.Feed(b)
	}

	switch {
	case b < 0x80: // ASCII
		return rune(b), DecodeReady
	case b >= 0xC0 && b < 0xE0: // 2-byte start
		d.buf[0] = b
		d.n = 1
		d.need = 2
	case b >= 0xE0 && b < 0xF0: // 3-byte start
		d.buf[0] = b
		d.n = 1
		d.need = 3
	case b >= 0xF0 && b < 0xF8: // 4-byte start
		d.buf[0] = b
		d.n = 1
		d.need = 4
	default: // Stray continuation or invalid lead byte
		return 0, DecodeInvalid
	}
	return 0, DecodeIncomplete
}
