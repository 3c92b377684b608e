package boundary

import (
	"fmt"

	"github.com/soundfold/tagbridge/errors"
)

// Coerce functions let API parameters typed as a boundary value also accept
// the plain Go form. Each is a tagged-variant conversion applied exactly once
// where a value enters the boundary; no coercion happens past this point.

// CoerceText accepts a TextValue or a plain string (taken as UTF-8).
func CoerceText(v any) (TextValue, error) {
	switch t := v.(type) {
	case TextValue:
		return t, nil
	case string:
		return Text(t), nil
	}
	return TextValue{}, coerceErr(v, "TextValue", "string")
}

// CoerceBytes accepts a ByteValue, a []byte, or a string of raw bytes.
func CoerceBytes(v any) (ByteValue, error) {
	switch t := v.(type) {
	case ByteValue:
		return t, nil
	case []byte:
		return Bytes(t), nil
	case string:
		return Bytes([]byte(t)), nil
	}
	return ByteValue{}, coerceErr(v, "ByteValue", "[]byte")
}

// CoercePath accepts a PathValue or a plain string, validating the string
// form on the way in.
func CoercePath(v any) (PathValue, error) {
	switch t := v.(type) {
	case PathValue:
		return t, nil
	case string:
		return Path(t)
	}
	return PathValue{}, coerceErr(v, "PathValue", "string")
}

// CoerceTextList accepts a TextList, a []string, or a []TextValue.
func CoerceTextList(v any) (TextList, error) {
	switch t := v.(type) {
	case TextList:
		return t, nil
	case []string:
		return TextListOf(t), nil
	case []TextValue:
		items := make([]TextValue, len(t))
		copy(items, t)
		return TextList{items: items}, nil
	}
	return TextList{}, coerceErr(v, "TextList", "[]string")
}

func coerceErr(v any, want, plain string) *errors.Error {
	return errors.New(errors.PhaseConvert, errors.KindConversion).
		GoType(fmt.Sprintf("%T", v)).
		NativeType(want).
		Value(v).
		Detail("value must be a %s or a plain %s", want, plain).
		Build()
}
