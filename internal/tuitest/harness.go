// Package tuitest drives a terminal program inside a pseudo terminal, replays
// scripted keystrokes and records what it drew.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 5 * time.Second
)

// Step is one scripted interaction. Delay is waited before Input is written.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Wait returns a step that only pauses.
func Wait(d time.Duration) Step {
	return Step{Delay: d}
}

// Type returns a step that writes text as typed input.
func Type(text string) Step {
	return Step{Input: []byte(text)}
}

// Press returns a step that writes a key sequence such as KeyEnter.
func Press(key []byte) Step {
	return Step{Input: key}
}

// Config configures how the harness spawns and drives the program.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Recording holds the raw terminal stream plus parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// capture copies PTY output into a buffer while answering terminal queries.
type capture struct {
	mu   sync.Mutex
	out  bytes.Buffer
	done chan struct{}
}

func startCapture(ptmx *os.File) *capture {
	c := &capture{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		responder := newTerminalResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				responder.Process(buf[:n])
				c.mu.Lock()
				c.out.Write(buf[:n])
				c.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
	return c
}

func (c *capture) collected() []byte {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.out.Bytes()...)
}

// Run executes the configured command inside a PTY, replays the steps and
// captures every byte written to the terminal.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg = cfg.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	out := startCapture(ptmx)
	start := time.Now()
	if err := replay(ctx, ptmx, cfg.Steps); err != nil {
		return nil, err
	}
	if err := awaitExit(ctx, cmd, cfg); err != nil {
		return nil, err
	}

	// Closing the PTY unblocks the capture goroutine.
	_ = ptmx.Close()
	raw := out.collected()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

func replay(ctx context.Context, ptmx *os.File, steps []Step) error {
	for i, step := range steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: cancelled at step %d: %w", i, ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) == 0 {
			continue
		}
		if _, err := ptmx.Write(step.Input); err != nil {
			return fmt.Errorf("tuitest: write step %d: %w", i, err)
		}
	}
	return nil
}

func awaitExit(ctx context.Context, cmd *exec.Cmd, cfg Config) error {
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		if err == nil || exitAllowed(err, cfg) {
			return nil
		}
		return fmt.Errorf("tuitest: program exited with error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}
}

func exitAllowed(err error, cfg Config) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range cfg.AllowedExitCodes {
			if exitErr.ExitCode() == code {
				return true
			}
		}
	}
	return cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	KeyEnter    = []byte{'\r'}
	KeyCtrlC    = []byte{3}
	KeyCtrlA    = []byte{1}
	KeyEsc      = []byte{27}
	KeyTab      = []byte{'\t'}
	KeyShiftTab = []byte("\x1b[Z")
	KeyUp       = []byte("\x1b[A")
	KeyDown     = []byte("\x1b[B")
	KeyRight    = []byte("\x1b[C")
	KeyLeft     = []byte("\x1b[D")
)
