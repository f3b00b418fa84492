package extract

import "bytes"

// state tracks nesting while scanning for the next top-level object or array.
//
// Bytes are scanned rather than runes: every structural character is ASCII
// and never occurs inside a multi-byte UTF-8 sequence.
type state struct {
	braceDepth    int
	bracketDepth  int
	inString      bool
	escapePending bool
	started       bool
	// discarding skips the rest of an oversized value until its depth
	// returns to the top level.
	discarding bool
	buf        []byte
}

func (s *state) atTopLevel() bool {
	return s.braceDepth == 0 && s.bracketDepth == 0
}

// feed advances the state by one byte and reports whether it completed a
// balanced top-level value, which is then held in buf.
func (s *state) feed(c byte) bool {
	if s.inString {
		switch {
		case s.escapePending:
			s.escapePending = false
		case c == '\\':
			s.escapePending = true
		case c == '"':
			s.inString = false
		}
	} else {
		switch c {
		case '"':
			s.inString = true
		case '{':
			if s.atTopLevel() {
				s.begin()
			}
			s.braceDepth++
		case '}':
			if s.braceDepth > 0 {
				s.braceDepth--
			}
		case '[':
			if s.atTopLevel() {
				s.begin()
			}
			s.bracketDepth++
		case ']':
			if s.bracketDepth > 0 {
				s.bracketDepth--
			}
		}
	}

	if s.discarding {
		if !s.inString && s.atTopLevel() {
			s.discarding = false
		}
		return false
	}

	if s.started {
		s.buf = append(s.buf, c)
	}

	return s.started && !s.inString && s.atTopLevel() && len(bytes.TrimSpace(s.buf)) > 0
}

// begin starts a new value, dropping any unbalanced fragment.
func (s *state) begin() {
	s.buf = s.buf[:0]
	s.started = true
}

// finish clears the buffer after a value was emitted or rejected.
func (s *state) finish() {
	s.buf = s.buf[:0]
	s.started = false
}

// discard abandons the current value but keeps tracking its nesting, so
// nested values inside it are not mistaken for top-level ones.
func (s *state) discard() {
	s.finish()
	s.discarding = true
}

// reset returns to the initial state.
func (s *state) reset() {
	*s = state{buf: s.buf[:0]}
}
