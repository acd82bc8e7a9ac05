// Package query defines the document-style query surface: the JSON-shaped
// values a clause may arrive as, the canonical forms each clause normalizes
// into, and the parsers that take one to the other. Parsing is purely
// structural; schema-aware validation happens in the plan compilers.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind discriminates the variants of a Surface value.
type Kind int

// Surface value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Member is a single key/value entry of an object Surface. Objects are kept as
// member slices, not maps, so that insertion order survives decoding.
type Member struct {
	Key   string
	Value Surface
}

// Surface is the tagged variant every clause input is expressed in:
// null, string, number, boolean, list, or object with ordered members.
// The zero value is the null Surface.
type Surface struct {
	kind    Kind
	str     string
	num     json.Number
	boolean bool
	list    []Surface
	members []Member
}

// Null returns the null Surface.
func Null() Surface { return Surface{} }

// NewString returns a string Surface.
func NewString(s string) Surface { return Surface{kind: KindString, str: s} }

// NewNumber returns a number Surface.
func NewNumber(n json.Number) Surface { return Surface{kind: KindNumber, num: n} }

// NewInt returns a number Surface holding an integer.
func NewInt(i int64) Surface {
	return Surface{kind: KindNumber, num: json.Number(strconv.FormatInt(i, 10))}
}

// NewFloat returns a number Surface holding a floating point value.
func NewFloat(f float64) Surface {
	return Surface{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// NewBool returns a boolean Surface.
func NewBool(b bool) Surface { return Surface{kind: KindBool, boolean: b} }

// NewList returns a list Surface of the given items.
func NewList(items ...Surface) Surface { return Surface{kind: KindList, list: items} }

// NewObject returns an object Surface with the given members, in order.
func NewObject(members ...Member) Surface { return Surface{kind: KindObject, members: members} }

// Kind reports which variant the Surface holds.
func (s Surface) Kind() Kind { return s.kind }

// IsNull reports whether the Surface is the null value.
func (s Surface) IsNull() bool { return s.kind == KindNull }

// Str returns the string payload of a string Surface.
func (s Surface) Str() (string, bool) {
	if s.kind != KindString {
		return "", false
	}
	return s.str, true
}

// Num returns the raw number payload of a number Surface.
func (s Surface) Num() (json.Number, bool) {
	if s.kind != KindNumber {
		return "", false
	}
	return s.num, true
}

// Int returns the payload of a number Surface as an int64. It fails for
// non-number Surfaces and for numbers that are not integral.
func (s Surface) Int() (int64, bool) {
	if s.kind != KindNumber {
		return 0, false
	}
	i, err := s.num.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

// Boolean returns the payload of a boolean Surface.
func (s Surface) Boolean() (bool, bool) {
	if s.kind != KindBool {
		return false, false
	}
	return s.boolean, true
}

// Items returns the elements of a list Surface.
func (s Surface) Items() ([]Surface, bool) {
	if s.kind != KindList {
		return nil, false
	}
	return s.list, true
}

// Members returns the ordered members of an object Surface.
func (s Surface) Members() ([]Member, bool) {
	if s.kind != KindObject {
		return nil, false
	}
	return s.members, true
}

// Member returns the value of the first member with the given key.
func (s Surface) Member(key string) (Surface, bool) {
	for _, m := range s.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Surface{}, false
}

// GoValue converts the Surface into a plain Go value: nil, string, bool,
// int64 or float64 for numbers, []any for lists, and map[string]any for
// objects (member order is lost in the map form).
func (s Surface) GoValue() any {
	switch s.kind {
	case KindNull:
		return nil
	case KindString:
		return s.str
	case KindNumber:
		return numberValue(s.num)
	case KindBool:
		return s.boolean
	case KindList:
		out := make([]any, 0, len(s.list))
		for _, item := range s.list {
			out = append(out, item.GoValue())
		}
		return out
	case KindObject:
		out := make(map[string]any, len(s.members))
		for _, m := range s.members {
			out[m.Key] = m.Value.GoValue()
		}
		return out
	}
	return nil
}

// FromValue builds a Surface from a plain Go value. Map keys are sorted so the
// result is deterministic; callers that care about member order should build
// objects with NewObject directly.
func FromValue(v any) (Surface, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Surface:
		return t, nil
	case string:
		return NewString(t), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case float32:
		return NewFloat(float64(t)), nil
	case float64:
		return NewFloat(t), nil
	case []string:
		items := make([]Surface, 0, len(t))
		for _, s := range t {
			items = append(items, NewString(s))
		}
		return NewList(items...), nil
	case []any:
		items := make([]Surface, 0, len(t))
		for _, item := range t {
			sv, err := FromValue(item)
			if err != nil {
				return Surface{}, err
			}
			items = append(items, sv)
		}
		return NewList(items...), nil
	case []Member:
		return NewObject(t...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			sv, err := FromValue(t[k])
			if err != nil {
				return Surface{}, err
			}
			members = append(members, Member{Key: k, Value: sv})
		}
		return NewObject(members...), nil
	}
	return Surface{}, fmt.Errorf("unsupported surface value type %T", v)
}

// UnmarshalJSON decodes a Surface from JSON, preserving object member order
// and keeping numbers as json.Number.
func (s *Surface) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeSurface(dec)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func decodeSurface(dec *json.Decoder) (Surface, error) {
	tok, err := dec.Token()
	if err != nil {
		return Surface{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t), nil
	case bool:
		return NewBool(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Surface
			for dec.More() {
				item, err := decodeSurface(dec)
				if err != nil {
					return Surface{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Surface{}, err
			}
			return NewList(items...), nil
		case '{':
			var members []Member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Surface{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Surface{}, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				value, err := decodeSurface(dec)
				if err != nil {
					return Surface{}, err
				}
				members = append(members, Member{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return Surface{}, err
			}
			return NewObject(members...), nil
		}
	}
	return Surface{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// MarshalJSON encodes the Surface back to JSON, emitting object members in
// their stored order.
func (s Surface) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeSurface(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeSurface(buf *bytes.Buffer, s Surface) error {
	switch s.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(s.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		buf.WriteString(s.num.String())
	case KindBool:
		buf.WriteString(strconv.FormatBool(s.boolean))
	case KindList:
		buf.WriteByte('[')
		for i, item := range s.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeSurface(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range s.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encodeSurface(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}
