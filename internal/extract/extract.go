// Package extract recovers JSON objects and arrays from a text stream that
// mixes them with other output, such as benchmark logs.
//
// Each input line is first tried as a complete JSON object or array. Lines
// that are not are scanned byte by byte, tracking brace and bracket depth and
// string state across lines, so a value printed over several lines is
// reassembled. Every recovered value is returned in the canonical compact form
// of package jsonl. Bare primitives outside an object or array are never
// returned, and an unterminated fragment at the end of the stream is dropped.
package extract

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/benchharness/benchjson/internal/jsonl"
)

// Options configures an Extractor.
type Options struct {
	// Strict reports balanced fragments that are not valid JSON as
	// *MalformedError instead of returning their raw text.
	Strict bool

	// MaxValueBytes drops a value under construction once it grows past this
	// many bytes. Zero means no limit.
	MaxValueBytes int

	Logger *log.Logger
}

// Value is one extracted record.
type Value struct {
	// Data is a single line of JSON, or of raw text when Fallback is set.
	Data []byte

	// Fallback is set when Data is the trimmed raw text of a balanced fragment
	// that did not parse (lenient mode only).
	Fallback bool
}

// MalformedError is returned by Next in strict mode for a balanced fragment
// that is not valid JSON. It does not end the stream.
type MalformedError struct {
	Fragment []byte
	Err      error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed JSON fragment %s: %v", Preview(e.Fragment), e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a *MalformedError.
func IsMalformed(err error) bool {
	var malformed *MalformedError
	return errors.As(err, &malformed)
}

// Stats counts what an Extractor has seen so far.
type Stats struct {
	Lines     int
	Values    int
	Fallbacks int
	Malformed int
	Dropped   int
}

type result struct {
	value Value
	err   error
}

// Extractor pulls values from a reader. It is not safe for concurrent use and
// cannot be restarted.
type Extractor struct {
	r      *bufio.Reader
	opts   Options
	logger *log.Logger

	st      state
	pending []result
	done    bool
	err     error
	stats   Stats
}

// New returns an Extractor reading from r.
func New(r io.Reader, opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{
		r:      bufio.NewReader(r),
		opts:   opts,
		logger: logger,
	}
}

// Next returns the next value. It returns io.EOF once the input is exhausted,
// a *MalformedError for a rejected fragment in strict mode, and any other
// error when reading fails.
func (e *Extractor) Next() (Value, error) {
	for len(e.pending) == 0 {
		if e.done {
			return Value{}, e.err
		}
		e.readLine()
	}

	next := e.pending[0]
	e.pending[0] = result{}
	e.pending = e.pending[1:]
	return next.value, next.err
}

// All returns the remaining values as a sequence. Iteration stops at the end
// of input or at the first error that is not a *MalformedError, which is
// yielded.
func (e *Extractor) All() iter.Seq2[Value, error] {
	return func(yield func(Value, error) bool) {
		for {
			value, err := e.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(value, err) {
				return
			}
			if err != nil && !IsMalformed(err) {
				return
			}
		}
	}
}

// Stats returns counters for the input consumed so far.
func (e *Extractor) Stats() Stats { return e.stats }

func (e *Extractor) readLine() {
	line, err := e.r.ReadBytes('\n')
	if len(line) > 0 {
		e.stats.Lines++
		e.scanLine(bytes.TrimRight(line, "\r\n"))
	}
	if err == nil {
		return
	}

	e.done = true
	if errors.Is(err, io.EOF) {
		e.err = io.EOF
		if e.st.started {
			e.stats.Dropped++
			e.logger.Debug("dropping unterminated fragment at end of input", "bytes", len(e.st.buf))
		}
		e.st.reset()
		return
	}
	e.err = fmt.Errorf("read input: %w", err)
}

func (e *Extractor) scanLine(line []byte) {
	if trimmed := bytes.TrimSpace(line); jsonl.Kind(trimmed) != jsonl.KindOther {
		if data, err := jsonl.Compact(trimmed); err == nil {
			e.emit(result{value: Value{Data: data}})
			return
		}
	}

	for _, c := range line {
		if e.st.feed(c) {
			e.complete()
			continue
		}
		if e.opts.MaxValueBytes > 0 && len(e.st.buf) > e.opts.MaxValueBytes {
			e.stats.Dropped++
			e.logger.Warn("dropping oversized fragment", "limit", e.opts.MaxValueBytes)
			e.st.discard()
		}
	}
}

func (e *Extractor) complete() {
	fragment := bytes.TrimSpace(e.st.buf)
	data, err := jsonl.Compact(fragment)
	switch {
	case err == nil:
		e.emit(result{value: Value{Data: data}})
	case e.opts.Strict:
		e.stats.Malformed++
		e.pending = append(e.pending, result{err: &MalformedError{
			Fragment: bytes.Clone(fragment),
			Err:      err,
		}})
	default:
		e.stats.Fallbacks++
		e.emit(result{value: Value{Data: bytes.Clone(fragment), Fallback: true}})
	}
	e.st.finish()
}

func (e *Extractor) emit(r result) {
	e.stats.Values++
	e.pending = append(e.pending, r)
}

// Preview returns a short quoted form of a fragment for log messages.
func Preview(fragment []byte) string {
	const limit = 80
	if len(fragment) <= limit {
		return fmt.Sprintf("%q", fragment)
	}
	return fmt.Sprintf("%q...", fragment[:limit])
}
