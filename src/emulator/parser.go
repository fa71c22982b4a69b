package emulator

import (
	"strconv"
	"strings"
)

const maxParamLen = 64 // Cap accumulated CSI parameter string

// ParserState represents the parser state machine state
type ParserState uint8

const (
	StateGround ParserState = iota
	StateEscape
	StateCSIEntry
	StateCSIParam
	StateOSC
	StateOSCParam
)

// Parser is the escape-sequence interpreter: a state machine that
// consumes raw bytes from the PTY and dispatches glyph writes and
// control-sequence effects to a Screen. Control-sequence introducers
// are single-byte ASCII, so only printable text passes through the
// UTF-8 decoder. Malformed or truncated input never corrupts the grid:
// unrecognized sequences are parsed and dropped, and the state always
// returns to Ground.
type Parser struct {
	state  ParserState
	screen *Screen
	dec    Decoder
	params []byte
	oscESC bool // ESC seen inside an OSC payload (possible ST)
}

// NewParser creates a new parser connected to a screen
func NewParser(screen *Screen) *Parser {
	return &Parser{
		state:  StateGround,
		screen: screen,
		params: make([]byte, 0, 16),
	}
}

// Screen returns the parser's screen
func (p *Parser) Screen() *Screen {
	return p.screen
}

// State returns the current state machine state
func (p *Parser) State() ParserState {
	return p.state
}

// Parse processes a byte slice through the parser
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.parseByte(b)
	}
}

func (p *Parser) parseByte(b byte) {
	switch p.state {
	case StateGround:
		p.parseGround(b)
	case StateEscape:
		p.parseEscape(b)
	case StateCSIEntry, StateCSIParam:
		p.parseCSI(b)
	case StateOSC, StateOSCParam:
		p.parseOSC(b)
	default:
		p.state = StateGround
		p.parseGround(b)
	}
}

func (p *Parser) parseGround(b byte) {
	if p.dec.Pending() || b >= 0x80 {
		r, status := p.dec.Feed(b)
		if status != DecodeReady {
			return // Incomplete, or invalid bytes dropped silently
		}
		if r < 0x80 {
			// A single-byte input interrupted a multi-byte sequence;
			// it is fresh input, possibly a control byte.
			p.parseGroundByte(byte(r))
			return
		}
		p.screen.WriteGlyph(r)
		return
	}
	p.parseGroundByte(b)
}

func (p *Parser) parseGroundByte(b byte) {
	switch {
	case b == 0x1b: // ESC
		p.state = StateEscape
	case b == 0x07: // BEL - no visual effect
	case b == 0x08: // BS
		if p.screen.cursor.X > 0 {
			p.screen.cursor.X--
		}
	case b == 0x09: // HT - next multiple of 8, wrapping past the last column
		next := (p.screen.cursor.X + 8) &^ 7
		if next >= p.screen.cols {
			p.screen.LineFeed()
		} else {
			p.screen.cursor.X = next
		}
	case b == 0x0a: // LF - full CR+LF semantics, see Screen.LineFeed
		p.screen.LineFeed()
	case b == 0x0d: // CR
		p.screen.cursor.X = 0
	case b >= 0x20 && b < 0x7f: // Printable ASCII
		p.screen.WriteGlyph(rune(b))
	}
}

func (p *Parser) parseEscape(b byte) {
	switch b {
	case '[': // CSI
		p.state = StateCSIEntry
		p.params = p.params[:0]
	case ']': // OSC
		p.state = StateOSC
		p.oscESC = false
	default:
		// Unrecognized short escape. Return to Ground and re-dispatch
		// the byte so ordinary text mistaken for an escape is never
		// silently eaten.
		p.state = StateGround
		p.parseGround(b)
	}
}

func (p *Parser) parseCSI(b byte) {
	switch {
	case b >= '0' && b <= '9', b == ';', b == '?', b == '>', b == ' ':
		if len(p.params) >= maxParamLen {
			p.params = p.params[:0]
			p.state = StateGround
			return
		}
		p.params = append(p.params, b)
		p.state = StateCSIParam
	default:
		// Final byte - dispatch and return to Ground
		p.dispatchCSI(b)
		p.state = StateGround
	}
}

// parseOSC accumulates an operating-system-command payload until a BEL
// or ESC-backslash terminator. The payload is discarded: window titles
// and hyperlinks are not supported, a documented simplification.
func (p *Parser) parseOSC(b byte) {
	if p.oscESC {
		p.oscESC = false
		p.state = StateGround
		if b != '\\' { // Not a terminator after all
			p.parseGround(b)
		}
		return
	}
	switch {
	case b == 0x07: // BEL terminator
		p.state = StateGround
	case b == 0x1b:
		p.oscESC = true
	case b == ';':
		p.state = StateOSCParam
	}
}

// csiArgs holds the parsed parameters of one CSI sequence.
type csiArgs struct {
	params  []int
	private bool // Leading '?' or '>' was present
}

// arg returns the i-th parameter, substituting def when the parameter
// is absent or zero. Zero and omitted are equivalent for the sequences
// that use this.
func (a csiArgs) arg(i, def int) int {
	if i < len(a.params) && a.params[i] > 0 {
		return a.params[i]
	}
	return def
}

// mode returns the i-th parameter with zero kept as a meaningful value.
func (a csiArgs) mode(i int) int {
	if i < len(a.params) {
		return a.params[i]
	}
	return 0
}

// has reports whether any parameter equals v.
func (a csiArgs) has(v int) bool {
	for _, p := range a.params {
		if p == v {
			return true
		}
	}
	return false
}

func (p *Parser) parseParams() csiArgs {
	raw := string(p.params)
	var args csiArgs
	if strings.HasPrefix(raw, "?") || strings.HasPrefix(raw, ">") {
		args.private = true
		raw = raw[1:]
	}
	raw = strings.TrimSuffix(raw, " ") // Intermediate space, e.g. DECSCUSR
	if raw == "" {
		return args
	}
	for _, field := range strings.Split(raw, ";") {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			n = 0
		}
		args.params = append(args.params, n)
	}
	return args
}

// csiHandler applies the effect of one complete CSI sequence.
type csiHandler func(p *Parser, args csiArgs)

// csiHandlers maps CSI final bytes to their effects. Final bytes not in
// the table are no-ops: an unsupported sequence must never crash or
// desynchronize the parser.
var csiHandlers = map[byte]csiHandler{
	'm': func(p *Parser, args csiArgs) { p.applySGR(args.params) },
	'H': csiCursorPosition,
	'f': csiCursorPosition,
	'A': func(p *Parser, args csiArgs) { p.screen.MoveCursor(0, -args.arg(0, 1)) },
	'B': func(p *Parser, args csiArgs) { p.screen.MoveCursor(0, args.arg(0, 1)) },
	'C': func(p *Parser, args csiArgs) { p.screen.MoveCursor(args.arg(0, 1), 0) },
	'D': func(p *Parser, args csiArgs) { p.screen.MoveCursor(-args.arg(0, 1), 0) },
	'G': func(p *Parser, args csiArgs) { p.screen.SetCursor(args.arg(0, 1)-1, p.screen.cursor.Y) },
	'd': func(p *Parser, args csiArgs) { p.screen.SetCursor(p.screen.cursor.X, args.arg(0, 1)-1) },
	'J': func(p *Parser, args csiArgs) { p.screen.ClearScreen(args.mode(0)) },
	'K': func(p *Parser, args csiArgs) { p.screen.ClearLine(args.mode(0)) },
	's': func(p *Parser, args csiArgs) { p.screen.SaveCursor() },
	'u': func(p *Parser, args csiArgs) { p.screen.RestoreCursor() },
	'h': func(p *Parser, args csiArgs) { p.setMode(args, true) },
	'l': func(p *Parser, args csiArgs) { p.setMode(args, false) },
	'r': func(p *Parser, args csiArgs) {}, // DECSTBM parsed but inert
	'n': func(p *Parser, args csiArgs) {}, // DSR accepted, no response sent
}

func csiCursorPosition(p *Parser, args csiArgs) {
	row := args.arg(0, 1)
	col := args.arg(1, 1)
	p.screen.SetCursor(col-1, row-1)
}

func (p *Parser) dispatchCSI(final byte) {
	handler, ok := csiHandlers[final]
	if !ok {
		return
	}
	handler(p, p.parseParams())
}

// setMode handles SM/RM. Only the DEC private cursor-visibility mode is
// implemented.
func (p *Parser) setMode(args csiArgs, set bool) {
	if args.private && args.has(25) { // DECTCEM
		p.screen.SetCursorVisible(set)
	}
}

// applySGR applies graphic-rendition parameters left to right.
// Unrecognized codes are skipped without aborting the rest of the list.
func (p *Parser) applySGR(params []int) {
	if len(params) == 0 {
		p.screen.ResetAttrs()
		return
	}

	attrs := p.screen.Attrs()
	i := 0
	for i < len(params) {
		param := params[i]
		i++

		switch param {
		case 0: // Reset
			attrs = DefaultCell()
		case 1:
			attrs.Attrs |= AttrBold
		case 3:
			attrs.Attrs |= AttrItalic
		case 4:
			attrs.Attrs |= AttrUnderline
		case 22:
			attrs.Attrs &^= AttrBold
		case 23:
			attrs.Attrs &^= AttrItalic
		case 24:
			attrs.Attrs &^= AttrUnderline
		case 30, 31, 32, 33, 34, 35, 36, 37:
			attrs.FG = IndexedColor(uint8(param - 30))
		case 38:
			i = parseExtendedColor(&attrs.FG, params, i)
		case 39:
			attrs.FG = DefaultFG
		case 40, 41, 42, 43, 44, 45, 46, 47:
			attrs.BG = IndexedColor(uint8(param - 40))
		case 48:
			i = parseExtendedColor(&attrs.BG, params, i)
		case 49:
			attrs.BG = DefaultBG
		case 90, 91, 92, 93, 94, 95, 96, 97:
			attrs.FG = IndexedColor(uint8(param - 90 + 8))
		case 100, 101, 102, 103, 104, 105, 106, 107:
			attrs.BG = IndexedColor(uint8(param - 100 + 8))
		}
	}
	p.screen.SetAttrs(attrs)
}

// parseExtendedColor handles the 38/48 extended color forms: ;5;index
// for a palette color, ;2;r;g;b for truecolor. Returns the index of the
// first unconsumed parameter.
func parseExtendedColor(c *Color, params []int, i int) int {
	if i >= len(params) {
		return i
	}

	mode := params[i]
	i++

	switch mode {
	case 5: // 256-color
		if i < len(params) {
			*c = IndexedColor(uint8(params[i]))
			i++
		}
	case 2: // RGB
		if i+2 < len(params) {
			*c = RGBColor(
				uint8(params[i]),
				uint8(params[i+1]),
				uint8(params[i+2]),
			)
			i += 3
		}
	}
	return i
}
