package emulator

// Cursor represents the terminal cursor state
type Cursor struct {
	X, Y    int
	Visible bool
}

// Screen is the terminal grid: a rows x cols matrix of cells, the
// cursor, a single saved-cursor slot, and the current drawing
// attributes. It is mutated only by the Parser and is not safe for
// concurrent use.
type Screen struct {
	cols, rows int
	cells      [][]Cell
	cursor     Cursor
	savedX     int
	savedY     int
	attrs      Cell // Current drawing attributes
}

// NewScreen creates a new screen buffer. Dimensions below 1 are raised
// to 1.
func NewScreen(cols, rows int) *Screen {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	s := &Screen{
		cols:  cols,
		rows:  rows,
		attrs: DefaultCell(),
	}
	s.cursor = Cursor{X: 0, Y: 0, Visible: true}
	s.cells = make([][]Cell, rows)
	for i := range s.cells {
		s.cells[i] = make([]Cell, cols)
		for j := range s.cells[i] {
			s.cells[i][j] = DefaultCell()
		}
	}
	return s
}

// Size returns the screen dimensions
func (s *Screen) Size() (cols, rows int) {
	return s.cols, s.rows
}

// Cursor returns the current cursor state
func (s *Screen) Cursor() Cursor {
	return s.cursor
}

// SetCursor sets the cursor position, clamped into bounds
func (s *Screen) SetCursor(x, y int) {
	s.cursor.X = clamp(x, 0, s.cols-1)
	s.cursor.Y = clamp(y, 0, s.rows-1)
}

// MoveCursor moves the cursor relatively, clamped into bounds
func (s *Screen) MoveCursor(dx, dy int) {
	s.SetCursor(s.cursor.X+dx, s.cursor.Y+dy)
}

// SetCursorVisible sets cursor visibility
func (s *Screen) SetCursorVisible(visible bool) {
	s.cursor.Visible = visible
}

// SaveCursor copies the cursor position into the saved slot
func (s *Screen) SaveCursor() {
	s.savedX = s.cursor.X
	s.savedY = s.cursor.Y
}

// RestoreCursor moves the cursor to the saved position, clamped in case
// the screen shrank since the save
func (s *Screen) RestoreCursor() {
	s.SetCursor(s.savedX, s.savedY)
}

// Cell returns the cell at the given position
func (s *Screen) Cell(x, y int) Cell {
	if x < 0 || x >= s.cols || y < 0 || y >= s.rows {
		return DefaultCell()
	}
	return s.cells[y][x]
}

// SetCell sets the cell at the given position
func (s *Screen) SetCell(x, y int, cell Cell) {
	if x < 0 || x >= s.cols || y < 0 || y >= s.rows {
		return
	}
	s.cells[y][x] = cell
}

// WriteGlyph writes a glyph at the cursor with the current attributes
// and advances the cursor. Wide glyphs take two cells: the glyph on the
// left, a spacer on the right. Advancing past the last column wraps to
// column 0 of the next row immediately, scrolling when the wrap target
// is past the last row.
func (s *Screen) WriteGlyph(r rune) {
	width := RuneWidth(r)
	if s.cursor.X+width > s.cols && s.cursor.X > 0 {
		s.wrap()
	}

	cell := Cell{
		Rune:  r,
		FG:    s.attrs.FG,
		BG:    s.attrs.BG,
		Attrs: s.attrs.Attrs,
	}
	s.SetCell(s.cursor.X, s.cursor.Y, cell)
	if width == 2 && s.cursor.X+1 < s.cols {
		spacer := cell
		spacer.Rune = ' '
		spacer.Attrs |= AttrWideSpacer
		s.SetCell(s.cursor.X+1, s.cursor.Y, spacer)
	}

	s.cursor.X += width
	if s.cursor.X >= s.cols {
		s.wrap()
	}
}

// wrap moves the cursor to column 0 of the next row, scrolling if the
// cursor is already on the last row.
func (s *Screen) wrap() {
	s.cursor.X = 0
	if s.cursor.Y >= s.rows-1 {
		s.ScrollUp()
	} else {
		s.cursor.Y++
	}
}

// LineFeed advances the cursor one row and resets the column, scrolling
// on the last row. Bare LF and CRLF are deliberately equivalent here,
// matching the behavior this emulator inherited.
func (s *Screen) LineFeed() {
	s.wrap()
}

// ScrollUp shifts all rows up by one, discarding row 0 and clearing the
// new bottom row. The cursor does not move.
func (s *Screen) ScrollUp() {
	first := s.cells[0]
	copy(s.cells, s.cells[1:])
	for x := range first {
		first[x] = DefaultCell()
	}
	s.cells[s.rows-1] = first
}

// EraseRegion clears cells from (fromRow, fromCol) through
// (toRow, toCol) inclusive, in reading order, to the default cell.
// Coordinates are clamped into bounds.
func (s *Screen) EraseRegion(fromRow, fromCol, toRow, toCol int) {
	fromRow = clamp(fromRow, 0, s.rows-1)
	toRow = clamp(toRow, 0, s.rows-1)
	fromCol = clamp(fromCol, 0, s.cols-1)
	toCol = clamp(toCol, 0, s.cols-1)
	for y := fromRow; y <= toRow; y++ {
		x0, x1 := 0, s.cols-1
		if y == fromRow {
			x0 = fromCol
		}
		if y == toRow {
			x1 = toCol
		}
		for x := x0; x <= x1; x++ {
			s.cells[y][x] = DefaultCell()
		}
	}
}

// ClearLine clears part of the cursor's row: mode 0 cursor to end,
// mode 1 start to cursor, mode 2 the whole row.
func (s *Screen) ClearLine(mode int) {
	y := s.cursor.Y
	switch mode {
	case 0:
		s.EraseRegion(y, s.cursor.X, y, s.cols-1)
	case 1:
		s.EraseRegion(y, 0, y, s.cursor.X)
	case 2:
		s.EraseRegion(y, 0, y, s.cols-1)
	}
}

// ClearScreen clears part of the screen: mode 0 cursor to end, mode 1
// start to cursor, mode 2 or 3 everything. The cursor does not move.
func (s *Screen) ClearScreen(mode int) {
	switch mode {
	case 0:
		s.EraseRegion(s.cursor.Y, s.cursor.X, s.rows-1, s.cols-1)
	case 1:
		s.EraseRegion(0, 0, s.cursor.Y, s.cursor.X)
	case 2, 3:
		s.EraseRegion(0, 0, s.rows-1, s.cols-1)
	}
}

// SetAttrs sets the current drawing attributes
func (s *Screen) SetAttrs(attrs Cell) {
	s.attrs = attrs
}

// Attrs returns the current drawing attributes
func (s *Screen) Attrs() Cell {
	return s.attrs
}

// ResetAttrs resets all drawing attributes to default
func (s *Screen) ResetAttrs() {
	s.attrs = DefaultCell()
}

// Resize changes the screen size, preserving the overlapping top-left
// rectangle, filling new cells with the default cell, and clamping the
// cursor.
func (s *Screen) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	newCells := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		newCells[y] = make([]Cell, cols)
		for x := 0; x < cols; x++ {
			if y < s.rows && x < s.cols {
				newCells[y][x] = s.cells[y][x]
			} else {
				newCells[y][x] = DefaultCell()
			}
		}
	}

	s.cells = newCells
	s.cols = cols
	s.rows = rows

	s.cursor.X = clamp(s.cursor.X, 0, cols-1)
	s.cursor.Y = clamp(s.cursor.Y, 0, rows-1)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
