package jsonl

import (
	"fmt"
)

type member struct {
	key   string
	value []byte // canonical JSON
}

// Object is a JSON object that remembers member order.
//
// A key that appears more than once keeps the position of its first
// occurrence and the value of its last.
type Object struct {
	members []member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// ParseObject parses data, which must be a single JSON object.
func ParseObject(data []byte) (*Object, error) {
	if Kind(data) != KindObject {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalid)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return parseObject(data)
}

func parseObject(data []byte) (*Object, error) {
	obj := NewObject()
	err := walk(data, func(key string, value []byte) error {
		canonical, err := appendValue(nil, value)
		if err != nil {
			return err
		}
		obj.set(key, canonical)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.members) }

// Keys returns member names in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// Get returns the canonical JSON of the member named key.
func (o *Object) Get(key string) ([]byte, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].value, true
}

// Set replaces the value of key in place, or appends it when absent. raw may
// be any JSON value.
func (o *Object) Set(key string, raw []byte) error {
	canonical, err := CompactValue(raw)
	if err != nil {
		return fmt.Errorf("member %q: %w", key, err)
	}
	o.set(key, canonical)
	return nil
}

// SetRaw is Set for a value that is already canonical, such as the output of
// Compact. It is not checked.
func (o *Object) SetRaw(key string, canonical []byte) {
	o.set(key, canonical)
}

// SetString sets key to a JSON string.
func (o *Object) SetString(key, value string) {
	o.set(key, appendString(nil, value))
}

func (o *Object) set(key string, canonical []byte) {
	if i, ok := o.index[key]; ok {
		o.members[i].value = canonical
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key: key, value: canonical})
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return o.appendTo(nil), nil
}

func (o *Object) appendTo(dst []byte) []byte {
	dst = append(dst, '{')
	for i, m := range o.members {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, m.key)
		dst = append(dst, ':')
		dst = append(dst, m.value...)
	}
	return append(dst, '}')
}
