package terminal

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// waitForText polls the grid until some line contains want.
func waitForText(t *testing.T, term *Terminal, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, line := range term.Text() {
			if strings.Contains(line, want) {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("grid never contained %q; grid:\n%s", want, strings.Join(term.Text(), "\n"))
}

func startShell(t *testing.T) *Terminal {
	t.Helper()

	term, err := Start(Options{Name: "test", Shell: "/bin/sh"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(term.Close)
	return term
}

func TestStartDefaultGeometry(t *testing.T) {
	term := startShell(t)

	snap := term.Snapshot()
	if snap.Cols != 80 || snap.Rows != 24 {
		t.Errorf("snapshot = %dx%d, want 80x24", snap.Cols, snap.Rows)
	}
	if !snap.CursorVisible {
		t.Error("cursor should start visible")
	}
}

func TestEchoReachesGrid(t *testing.T) {
	term := startShell(t)

	if err := term.SendText("echo grid-check"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if err := term.SendKey(KeyEnter); err != nil {
		t.Fatalf("SendKey() error = %v", err)
	}

	waitForText(t, term, "grid-check")
}

func TestColoredOutputReachesGrid(t *testing.T) {
	term := startShell(t)

	term.SendText("printf '\\033[31mruby\\033[0m\\n'")
	term.SendKey(KeyEnter)
	waitForText(t, term, "ruby")
}

func TestOnUpdateFires(t *testing.T) {
	var updates atomic.Int64
	term, err := Start(Options{
		Shell:    "/bin/sh",
		OnUpdate: func() { updates.Add(1) },
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer term.Close()

	term.SendText("echo ping")
	term.SendKey(KeyEnter)
	waitForText(t, term, "ping")

	if updates.Load() == 0 {
		t.Error("OnUpdate never fired")
	}
}

func TestResizeRendezvous(t *testing.T) {
	term := startShell(t)

	if err := term.Resize(40, 120); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}

	snap := term.Snapshot()
	if snap.Cols != 120 || snap.Rows != 40 {
		t.Errorf("grid = %dx%d, want 120x40", snap.Cols, snap.Rows)
	}
	size := term.Session().Size()
	if int(size.Rows) != snap.Rows || int(size.Cols) != snap.Cols {
		t.Errorf("kernel size %v disagrees with grid %dx%d", size, snap.Cols, snap.Rows)
	}
}

func TestOnExitFiresExactlyOnce(t *testing.T) {
	var exits atomic.Int64
	term, err := Start(Options{
		Shell:  "/bin/sh",
		OnExit: func(error) { exits.Add(1) },
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer term.Close()

	term.SendText("exit")
	term.SendKey(KeyEnter)

	select {
	case <-term.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for session end")
	}

	// Close after a natural exit must not re-report.
	term.Close()
	if got := exits.Load(); got != 1 {
		t.Errorf("OnExit fired %d times, want 1", got)
	}
}

func TestCloseIsIdempotentAndBounded(t *testing.T) {
	term := startShell(t)

	start := time.Now()
	term.Close()
	term.Close()
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Close took %v, should be bounded", elapsed)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	term := startShell(t)

	snap := term.Snapshot()
	snap.Cells[0][0].Rune = '@'

	if term.Snapshot().Cells[0][0].Rune == '@' {
		t.Error("mutating a snapshot must not alias the live grid")
	}
}
