package pty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// ErrNoData is returned by ReadNonBlocking when no bytes are currently
// available.
var ErrNoData = errors.New("pty: no data available")

// ErrClosed is returned once the child side of the PTY is gone or the
// session has been terminated.
var ErrClosed = errors.New("pty: session closed")

// terminateGrace is how long Terminate waits after SIGTERM before
// escalating to SIGKILL.
const terminateGrace = 500 * time.Millisecond

// Size represents terminal dimensions
type Size struct {
	Rows uint16
	Cols uint16
}

// DefaultSize is the default terminal size (80x24)
var DefaultSize = Size{Rows: 24, Cols: 80}

// Session owns one child process and the master side of its
// pseudo-terminal. The master descriptor is non-blocking; callers poll
// ReadNonBlocking from their own loop.
type Session struct {
	mu         sync.Mutex
	cmd        *exec.Cmd
	master     *os.File
	size       Size
	dead       bool // Read failure observed; no further I/O
	terminated bool
	done       chan struct{}
	exitErr    error
}

// Start allocates a pseudo-terminal pair and spawns the given shell as
// a login shell (argv "-l") with TERM=xterm-256color at the requested
// size. A spawn failure is fatal to session creation; nothing leaks
// into the parent.
func Start(shell string, rows, cols int) (*Session, error) {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return StartCommand(shell, []string{"-l"}, rows, cols)
}

// StartCommand spawns an arbitrary command in a new pseudo-terminal.
func StartCommand(command string, args []string, rows, cols int) (*Session, error) {
	if rows < 1 {
		rows = int(DefaultSize.Rows)
	}
	if cols < 1 {
		cols = int(DefaultSize.Cols)
	}

	cmd := exec.Command(command, args...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", command, err)
	}

	if err := unix.SetNonblock(int(master.Fd()), true); err != nil {
		master.Close()
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("set nonblocking: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		master: master,
		size:   Size{Rows: uint16(rows), Cols: uint16(cols)},
		done:   make(chan struct{}),
	}

	go func() {
		s.exitErr = cmd.Wait()
		close(s.done)
	}()

	return s, nil
}

// ReadNonBlocking reads whatever bytes are ready into buf. It returns
// ErrNoData when the child has produced nothing yet and ErrClosed once
// the peer is gone. The first failure other than "no data yet" marks
// the session dead; later calls keep returning ErrClosed without
// touching the descriptor again.
func (s *Session) ReadNonBlocking(buf []byte) (int, error) {
	s.mu.Lock()
	master := s.master
	dead := s.dead
	s.mu.Unlock()

	if dead || master == nil {
		return 0, ErrClosed
	}

	n, err := unix.Read(int(master.Fd()), buf)
	if n > 0 {
		return n, nil
	}
	if err == unix.EAGAIN || err == unix.EINTR {
		return 0, ErrNoData
	}

	// EOF, EIO (peer closed), or any other descriptor error.
	s.mu.Lock()
	s.dead = true
	s.mu.Unlock()
	return 0, ErrClosed
}

// Write forwards raw bytes to the child's input, looping until every
// byte is flushed or a fatal write error occurs. Short and would-block
// writes are retried.
func (s *Session) Write(data []byte) error {
	s.mu.Lock()
	master := s.master
	dead := s.dead
	s.mu.Unlock()

	if dead || master == nil {
		return ErrClosed
	}

	fd := int(master.Fd())
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if n > 0 {
			data = data[n:]
			continue
		}
		if err == unix.EAGAIN || err == unix.EINTR {
			time.Sleep(time.Millisecond)
			continue
		}
		return fmt.Errorf("pty write: %w", err)
	}
	return nil
}

// Resize informs the kernel of the new window size so the child's own
// line editing and full-screen programs reflow. Must be called whenever
// the grid's dimensions change.
func (s *Session) Resize(rows, cols, pixelWidth, pixelHeight int) error {
	s.mu.Lock()
	master := s.master
	s.size = Size{Rows: uint16(rows), Cols: uint16(cols)}
	s.mu.Unlock()

	if master == nil {
		return ErrClosed
	}
	return pty.Setsize(master, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
		X:    uint16(pixelWidth),
		Y:    uint16(pixelHeight),
	})
}

// Size returns the last size reported to the kernel
func (s *Session) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Done returns a channel that closes when the child exits
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ExitErr returns the child's exit error. Only meaningful after Done
// is closed.
func (s *Session) ExitErr() error {
	select {
	case <-s.done:
		return s.exitErr
	default:
		return nil
	}
}

// Terminate stops the child: SIGTERM, a bounded grace period, then
// SIGKILL, and closes the master descriptor. It is idempotent and never
// blocks longer than the grace period.
func (s *Session) Terminate() {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.terminated = true
	s.dead = true
	master := s.master
	s.master = nil
	cmd := s.cmd
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-s.done:
		case <-time.After(terminateGrace):
			cmd.Process.Kill()
		}
	}

	if master != nil {
		master.Close()
	}
}
