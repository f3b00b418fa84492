// Package jsonl produces the canonical compact form used for every JSON Lines
// record the tool writes.
//
// The canonical form has no insignificant whitespace, keeps object keys in the
// order they were first seen, re-escapes strings minimally (non-ASCII and HTML
// characters are written as-is) and copies numbers verbatim.
package jsonl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

var (
	ErrInvalid      = errors.New("invalid JSON")
	ErrNotContainer = errors.New("JSON root is not an object or array")
)

// RootKind is the kind of a JSON text's top-level value.
type RootKind int

const (
	KindOther RootKind = iota
	KindObject
	KindArray
)

func (k RootKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "other"
	}
}

// Kind reports the root kind of data by its first non-space byte. It does not
// validate the text.
func Kind(data []byte) RootKind {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return KindOther
	}
	switch trimmed[0] {
	case '{':
		return KindObject
	case '[':
		return KindArray
	default:
		return KindOther
	}
}

// Validate checks that data is exactly one JSON value.
func Validate(data []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Compact returns the canonical form of data, which must be exactly one JSON
// object or array.
func Compact(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if Kind(data) == KindOther {
		return nil, ErrNotContainer
	}
	return CompactValue(data)
}

// CompactValue is like Compact but accepts any JSON value at the root.
func CompactValue(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if err := Validate(data); err != nil {
		return nil, err
	}
	return appendValue(make([]byte, 0, len(data)), data)
}

// appendValue appends the canonical form of value, which has been validated.
func appendValue(dst, value []byte) ([]byte, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrInvalid)
	}

	switch value[0] {
	case '{':
		obj, err := parseObject(value)
		if err != nil {
			return nil, err
		}
		return obj.appendTo(dst), nil
	case '[':
		return appendArray(dst, value)
	case '"':
		s, err := parseString(value)
		if err != nil {
			return nil, err
		}
		return appendString(dst, s), nil
	default:
		// Numbers and literals are copied verbatim.
		return append(dst, value...), nil
	}
}

// parseString unescapes a quoted JSON string.
func parseString(quoted []byte) (string, error) {
	s, err := jsonparser.ParseString(quoted[1 : len(quoted)-1])
	if err == nil {
		return s, nil
	}
	// Lone surrogates are replaced by encoding/json but rejected by jsonparser.
	if uerr := json.Unmarshal(quoted, &s); uerr != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, uerr)
	}
	return s, nil
}

// walk calls fn for each member of the object or array in data, in order.
// key is the unescaped member name, empty for array elements.
func walk(data []byte, fn func(key string, value []byte) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	open, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	isObject := open == json.Delim('{')

	for dec.More() {
		var key string
		if isObject {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalid, err)
			}
			name, ok := tok.(string)
			if !ok {
				return fmt.Errorf("%w: object key %v is not a string", ErrInvalid, tok)
			}
			key = name
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func appendArray(dst, data []byte) ([]byte, error) {
	dst = append(dst, '[')
	first := true
	err := walk(data, func(_ string, value []byte) error {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		var err error
		dst, err = appendValue(dst, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return append(dst, ']'), nil
}

func appendString(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...)
}

// Elements returns the canonical form of each element of a JSON array.
func Elements(data []byte) ([][]byte, error) {
	data = bytes.TrimSpace(data)
	if Kind(data) != KindArray {
		return nil, fmt.Errorf("%w: expected an array", ErrInvalid)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}

	var elements [][]byte
	err := walk(data, func(_ string, value []byte) error {
		element, err := appendValue(nil, value)
		if err != nil {
			return err
		}
		elements = append(elements, element)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return elements, nil
}
