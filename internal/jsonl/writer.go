package jsonl

import (
	"bufio"
	"fmt"
	"io"
)

// Writer writes one record per line and flushes after every record, so a
// reader on the other end of a pipe sees each record as soon as it exists.
type Writer struct {
	w     *bufio.Writer
	count int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes record followed by a line feed. record must not contain a
// line feed.
func (w *Writer) Write(record []byte) error {
	if _, err := w.w.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.count }
