package boundary

import (
	"strings"
	"unicode/utf8"

	"github.com/soundfold/tagbridge/errors"
)

// ByteValue is an immutable copy of a byte sequence. Construction and Data
// both copy, so neither side can observe later mutation of the other.
type ByteValue struct {
	data []byte
}

// Bytes copies b into a new ByteValue.
func Bytes(b []byte) ByteValue {
	if len(b) == 0 {
		return ByteValue{}
	}
	data := make([]byte, len(b))
	copy(data, b)
	return ByteValue{data: data}
}

// Data returns a copy of the payload.
func (v ByteValue) Data() []byte {
	if len(v.data) == 0 {
		return nil
	}
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}

// Len returns the payload length in bytes.
func (v ByteValue) Len() int {
	return len(v.data)
}

// IsEmpty reports whether the payload has zero length.
func (v ByteValue) IsEmpty() bool {
	return len(v.data) == 0
}

// TextValue is a character sequence held in an explicitly tagged encoding.
// The encoding tag exists only on this side of the boundary; converting back
// to a Go string drops it.
type TextValue struct {
	data []byte
	enc  Encoding
}

// Text builds a UTF-8 TextValue from a plain Go string.
func Text(s string) TextValue {
	return TextValue{data: []byte(s), enc: UTF8}
}

// TextAs builds a TextValue in an explicit encoding. It fails with a
// conversion error when s cannot be represented in enc, for example a rune
// outside the Latin-1 repertoire.
func TextAs(s string, enc Encoding) (TextValue, error) {
	data, err := encodeText(s, enc)
	if err != nil {
		return TextValue{}, err
	}
	return TextValue{data: data, enc: enc}, nil
}

// String decodes the value back into a Go string.
func (v TextValue) String() string {
	return decodeText(v.data, v.enc)
}

// Encoding returns the encoding tag.
func (v TextValue) Encoding() Encoding {
	return v.enc
}

// EncodedBytes returns a copy of the encoded byte form.
func (v TextValue) EncodedBytes() []byte {
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}

// TextList is an ordered sequence of TextValue. Order is significant and
// preserved across the boundary in both directions.
type TextList struct {
	items []TextValue
}

// TextListOf builds a TextList of UTF-8 values, preserving order.
func TextListOf(ss []string) TextList {
	if len(ss) == 0 {
		return TextList{}
	}
	items := make([]TextValue, len(ss))
	for i, s := range ss {
		items[i] = Text(s)
	}
	return TextList{items: items}
}

// Strings decodes every element, in order.
func (l TextList) Strings() []string {
	if len(l.items) == 0 {
		return nil
	}
	out := make([]string, len(l.items))
	for i, v := range l.items {
		out[i] = v.String()
	}
	return out
}

// Values returns a copy of the element slice.
func (l TextList) Values() []TextValue {
	if len(l.items) == 0 {
		return nil
	}
	out := make([]TextValue, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of elements.
func (l TextList) Len() int {
	return len(l.items)
}

// PathValue is a file path validated for native representability. The
// native form is a NUL-terminated UTF-8 C string, so validation rejects
// embedded NUL bytes and invalid UTF-8 before any engine call is made.
type PathValue struct {
	s string
}

// Path validates s and builds a PathValue. An embedded NUL surfaces as an
// allocation failure since no C string can ever be materialized for it.
func Path(s string) (PathValue, error) {
	if s == "" {
		return PathValue{}, errors.InvalidInput(errors.PhaseConvert, "empty path")
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return PathValue{}, errors.EmbeddedNul(errors.PhaseConvert, "path", i)
	}
	if !utf8.ValidString(s) {
		return PathValue{}, errors.InvalidUTF8(errors.PhaseConvert, []string{"path"}, []byte(s))
	}
	return PathValue{s: s}, nil
}

// String returns the path in host form.
func (p PathValue) String() string {
	return p.s
}

// IsZero reports whether p is the zero PathValue.
func (p PathValue) IsZero() bool {
	return p.s == ""
}
