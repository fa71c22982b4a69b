package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"korzeterm/src/config"
	"korzeterm/src/discord"
	"korzeterm/src/logging"
	"korzeterm/src/render"
	"korzeterm/src/terminal"
)

func main() {
	os.Exit(run())
}

func run() int {
	shellFlag := flag.String("shell", "", "program to run instead of $SHELL")
	nameFlag := flag.String("name", "korzeterm", "session name used in logs and streaming")
	storeToken := flag.String("store-discord-token", "", "save the Discord bot token to the system keyring and exit")
	flag.Parse()

	if *storeToken != "" {
		if err := discord.StoreToken(*storeToken); err != nil {
			fmt.Fprintf(os.Stderr, "korzeterm: %v\n", err)
			return 1
		}
		fmt.Println("Discord token stored.")
		return 0
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "korzeterm: config: %v\n", err)
		return 1
	}

	shell := *shellFlag
	if shell == "" {
		shell = cfg.Shell
	}

	var logger *logging.Logger
	if cfg.LogDir != "" {
		logger = logging.NewLogger(cfg.LogDir)
		defer logger.Close()
	}

	rows, cols := cfg.Rows, cfg.Cols
	stdin := int(os.Stdin.Fd())
	interactive := term.IsTerminal(stdin)
	if interactive {
		if c, r, err := term.GetSize(stdin); err == nil {
			cols, rows = c, r
		}
	}

	exitCh := make(chan error, 1)
	t, err := terminal.Start(terminal.Options{
		Name:     *nameFlag,
		Shell:    shell,
		Rows:     rows,
		Cols:     cols,
		Logger:   logger,
		OnOutput: func(chunk []byte) { os.Stdout.Write(chunk) },
		OnExit:   func(err error) { exitCh <- err },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "korzeterm: %v\n", err)
		return 1
	}
	defer t.Close()

	// The engine tracks the grid headlessly while bytes are relayed to
	// the enclosing terminal; raw mode keeps the enclosing tty from
	// interpreting them first.
	if interactive {
		oldState, err := term.MakeRaw(stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "korzeterm: raw mode: %v\n", err)
			return 1
		}
		defer term.Restore(stdin, oldState)
	}

	if cfg.Discord.Enabled {
		if stop, err := startStreaming(cfg, *nameFlag, t); err != nil {
			fmt.Fprintf(os.Stderr, "korzeterm: streaming disabled: %v\r\n", err)
		} else {
			defer stop()
		}
	}

	// Resize rendezvous: follow the enclosing terminal's size.
	winch := make(chan os.Signal, 1)
	if interactive {
		signal.Notify(winch, unix.SIGWINCH)
		defer signal.Stop(winch)
		go func() {
			for range winch {
				if c, r, err := term.GetSize(stdin); err == nil {
					t.Resize(r, c)
				}
			}
		}()
	}

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if werr := t.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	exitErr := <-exitCh
	if logger != nil {
		logger.LogOutput(*nameFlag+"-final", strings.Join(t.Text(), "\n"))
	}
	if exitErr != nil {
		fmt.Fprintf(os.Stderr, "korzeterm: shell exited: %v\r\n", exitErr)
		return 1
	}
	return 0
}

// startStreaming connects the Discord bot and begins posting grid
// snapshots. The returned stop function disconnects everything.
func startStreaming(cfg *config.Config, name string, t *terminal.Terminal) (func(), error) {
	bot, err := discord.NewBot(&cfg.Discord)
	if err != nil {
		return nil, err
	}
	if err := bot.Connect(); err != nil {
		return nil, err
	}

	streamer := discord.NewStreamer(bot, name, func() ([]byte, error) {
		return render.EncodePNG(t.Snapshot(), render.Options{})
	})
	streamer.Start()

	return func() {
		streamer.Stop()
		bot.Disconnect()
	}, nil
}
