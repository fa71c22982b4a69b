package terminal

// Key identifies a physical key the renderer boundary translates into
// the byte sequence the shell expects.
type Key int

const (
	KeyEnter Key = iota + 1
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
)

// keyBytes is the fixed translation table for special keys.
var keyBytes = map[Key][]byte{
	KeyEnter:     {'\r'},
	KeyBackspace: {0x7f},
	KeyTab:       {'\t'},
	KeyEscape:    {0x1b},
	KeyUp:        {0x1b, '[', 'A'},
	KeyDown:      {0x1b, '[', 'B'},
	KeyRight:     {0x1b, '[', 'C'},
	KeyLeft:      {0x1b, '[', 'D'},
	KeyHome:      {0x1b, '[', 'H'},
	KeyEnd:       {0x1b, '[', 'F'},
	KeyPageUp:    {0x1b, '[', '5', '~'},
	KeyPageDown:  {0x1b, '[', '6', '~'},
	KeyDelete:    {0x1b, '[', '3', '~'},
}

// EncodeKey returns the byte sequence for a special key, or nil for an
// unknown key.
func EncodeKey(k Key) []byte {
	seq, ok := keyBytes[k]
	if !ok {
		return nil
	}
	out := make([]byte, len(seq))
	copy(out, seq)
	return out
}

// EncodeCtrl returns the byte for a control-modified character:
// Ctrl+A..Z is byte 1..26 and Ctrl+[ is ESC. Other characters have no
// control encoding and return nil.
func EncodeCtrl(ch byte) []byte {
	switch {
	case ch >= 'a' && ch <= 'z':
		return []byte{ch - 'a' + 1}
	case ch >= 'A' && ch <= 'Z':
		return []byte{ch - 'A' + 1}
	case ch == '[':
		return []byte{0x1b}
	}
	return nil
}

// EncodeText returns the bytes for ordinary text input: its UTF-8
// encoding, unchanged.
func EncodeText(text string) []byte {
	return []byte(text)
}
