package cliutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/moby/term"
)

// StdioPath selects stdin or stdout in place of a file path.
const StdioPath = "-"

// OpenInput opens path for reading. An empty path or "-" reads stdin, which
// is not closed by the returned closer.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == StdioPath {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// OpenOutput opens path for writing, truncating it. An empty path or "-"
// writes to stdout, which is not closed by the returned closer.
func OpenOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == StdioPath {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// IsTerminal reports whether stream is attached to a terminal.
func IsTerminal(stream any) bool {
	_, ok := term.GetFdInfo(stream)
	return ok
}

// ReportBrokenPipe makes writes to a closed stdout fail with EPIPE instead of
// the runtime killing the process with SIGPIPE.
func ReportBrokenPipe() {
	signal.Notify(make(chan os.Signal, 1), syscall.SIGPIPE)
}

// IsBrokenPipe reports whether err comes from writing to a reader that has
// gone away.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}

// IsCleanExit reports whether err ends a streaming command without being a
// failure: an interrupt or a closed downstream.
func IsCleanExit(err error) bool {
	return errors.Is(err, context.Canceled) || IsBrokenPipe(err)
}

// Interruptible runs fn in its own goroutine and returns its error, or the
// context's error as soon as ctx is done. fn may still be blocked in a read
// when Interruptible returns after cancellation.
func Interruptible(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
