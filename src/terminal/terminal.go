package terminal

import (
	"sync"
	"time"

	"korzeterm/src/emulator"
	"korzeterm/src/logging"
	"korzeterm/src/pty"
)

// pollInterval is how often the read loop polls the PTY when no data
// is ready.
const pollInterval = 20 * time.Millisecond

// readBufSize is the chunk size for PTY reads.
const readBufSize = 32 * 1024

// Options configures a Terminal.
type Options struct {
	// Name labels the session in logs. Defaults to "terminal".
	Name string
	// Shell is the program to spawn; empty means $SHELL then /bin/sh.
	Shell string
	// Rows and Cols are the initial grid size; zero means 80x24.
	Rows, Cols int
	// Logger, when non-nil, receives session lifecycle and I/O events.
	Logger *logging.Logger
	// OnUpdate is called after each processed chunk of PTY output,
	// from the read loop. The renderer uses it as its redraw signal.
	OnUpdate func()
	// OnOutput receives each raw output chunk after it has been fed to
	// the interpreter. Used by relaying front ends.
	OnOutput func([]byte)
	// OnExit is called exactly once when the session ends, with the
	// child's exit error (nil for a clean exit).
	OnExit func(error)
}

// Terminal is one terminal session: a PTY, the escape interpreter, and
// the grid it maintains. All grid mutation happens on the read loop
// goroutine or under the terminal's mutex; the interpreter and grid are
// not safe for concurrent use on their own.
type Terminal struct {
	mu      sync.Mutex
	name    string
	screen  *emulator.Screen
	parser  *emulator.Parser
	session *pty.Session
	opts    Options

	closeOnce sync.Once
	exitOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// Snapshot is a read-only copy of the grid for the rendering boundary.
type Snapshot struct {
	Cols, Rows    int
	Cells         [][]emulator.Cell
	CursorX       int
	CursorY       int
	CursorVisible bool
}

// Start spawns the shell and begins consuming its output. Spawn
// failure is fatal to session creation.
func Start(opts Options) (*Terminal, error) {
	rows, cols := opts.Rows, opts.Cols
	if rows < 1 {
		rows = 24
	}
	if cols < 1 {
		cols = 80
	}
	if opts.Name == "" {
		opts.Name = "terminal"
	}

	session, err := pty.Start(opts.Shell, rows, cols)
	if err != nil {
		return nil, err
	}

	screen := emulator.NewScreen(cols, rows)
	t := &Terminal{
		name:    opts.Name,
		screen:  screen,
		parser:  emulator.NewParser(screen),
		session: session,
		opts:    opts,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if opts.Logger != nil {
		opts.Logger.LogStart(t.name)
	}

	go t.readLoop()
	return t, nil
}

// Name returns the session name
func (t *Terminal) Name() string {
	return t.name
}

// Session returns the underlying PTY session
func (t *Terminal) Session() *pty.Session {
	return t.session
}

// readLoop is the single thread of control that mutates the grid: it
// polls the PTY on a fixed short interval and feeds every chunk through
// the interpreter.
func (t *Terminal) readLoop() {
	defer close(t.done)

	buf := make([]byte, readBufSize)
	for {
		select {
		case <-t.stop:
			t.reportExit(t.session.ExitErr())
			return
		default:
		}

		n, err := t.session.ReadNonBlocking(buf)
		if n > 0 {
			chunk := buf[:n]
			t.mu.Lock()
			t.parser.Parse(chunk)
			t.mu.Unlock()

			if t.opts.Logger != nil {
				t.opts.Logger.LogOutput(t.name, string(chunk))
			}
			if t.opts.OnOutput != nil {
				t.opts.OnOutput(chunk)
			}
			if t.opts.OnUpdate != nil {
				t.opts.OnUpdate()
			}
			continue
		}

		switch err {
		case pty.ErrNoData:
			time.Sleep(pollInterval)
		default:
			// Closed or a fatal descriptor error: wait for the exit
			// status and report once.
			select {
			case <-t.session.Done():
			case <-time.After(2 * time.Second):
			}
			t.reportExit(t.session.ExitErr())
			return
		}
	}
}

// reportExit notifies the consumer exactly once.
func (t *Terminal) reportExit(err error) {
	t.exitOnce.Do(func() {
		if t.opts.Logger != nil {
			t.opts.Logger.LogExit(t.name, err)
			t.opts.Logger.LogEnd(t.name)
		}
		if t.opts.OnExit != nil {
			t.opts.OnExit(err)
		}
	})
}

// Write forwards raw bytes to the shell's input, retried until flushed.
func (t *Terminal) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if t.opts.Logger != nil {
		t.opts.Logger.LogInput(t.name, string(data))
	}
	return t.session.Write(data)
}

// SendKey encodes a special key and writes it to the shell.
func (t *Terminal) SendKey(k Key) error {
	return t.Write(EncodeKey(k))
}

// SendText writes ordinary text input to the shell.
func (t *Terminal) SendText(text string) error {
	return t.Write(EncodeText(text))
}

// Resize is the resize rendezvous: the grid and the kernel's window
// size change together and must never disagree.
func (t *Terminal) Resize(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return nil
	}

	t.mu.Lock()
	t.screen.Resize(cols, rows)
	err := t.session.Resize(rows, cols, 0, 0)
	t.mu.Unlock()

	if t.opts.Logger != nil {
		t.opts.Logger.LogResize(t.name, rows, cols)
	}
	return err
}

// Snapshot returns a deep copy of the grid, cursor position, and
// cursor visibility for the renderer to paint.
func (t *Terminal) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.screen.Size()
	cells := make([][]emulator.Cell, rows)
	for y := 0; y < rows; y++ {
		cells[y] = make([]emulator.Cell, cols)
		for x := 0; x < cols; x++ {
			cells[y][x] = t.screen.Cell(x, y)
		}
	}

	cursor := t.screen.Cursor()
	return Snapshot{
		Cols:          cols,
		Rows:          rows,
		Cells:         cells,
		CursorX:       cursor.X,
		CursorY:       cursor.Y,
		CursorVisible: cursor.Visible,
	}
}

// Done returns a channel that closes when the session has ended and
// the read loop has drained.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Close tears down the session: graceful signal, bounded grace period,
// forced kill. Idempotent.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		close(t.stop)
		t.session.Terminate()
		<-t.done
		if t.opts.Logger != nil {
			t.opts.Logger.CloseSession(t.name)
		}
	})
}

// Text returns the visible grid as plain text, one line per row with
// trailing blanks trimmed. Wide-glyph spacers are skipped.
func (t *Terminal) Text() []string {
	snap := t.Snapshot()
	lines := make([]string, snap.Rows)
	for y := 0; y < snap.Rows; y++ {
		runes := make([]rune, 0, snap.Cols)
		for x := 0; x < snap.Cols; x++ {
			cell := snap.Cells[y][x]
			if cell.IsWideSpacer() {
				continue
			}
			runes = append(runes, cell.Rune)
		}
		end := len(runes)
		for end > 0 && runes[end-1] == ' ' {
			end--
		}
		lines[y] = string(runes[:end])
	}
	return lines
}
