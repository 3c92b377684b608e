package boundary

import (
	"github.com/soundfold/tagbridge/errors"
)

// Lifting copies values out of guest memory. The copy happens before control
// returns to the caller, so a lifted value stays valid after the engine
// frees or reuses its buffer.

// LiftBytes copies (ptr, len) out of guest memory into a ByteValue.
// (0, 0) lifts to the empty value.
func LiftBytes(mem Memory, ptr, length uint32) (ByteValue, error) {
	data, err := liftRaw(mem, ptr, length, []string{"bytes"})
	if err != nil {
		return ByteValue{}, err
	}
	return ByteValue{data: data}, nil
}

// LiftString copies UTF-8 (ptr, len) out of guest memory into a Go string.
func LiftString(mem Memory, ptr, length uint32) (string, error) {
	data, err := liftRaw(mem, ptr, length, []string{"text"})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LiftText copies UTF-8 (ptr, len) out of guest memory into a TextValue.
func LiftText(mem Memory, ptr, length uint32) (TextValue, error) {
	data, err := liftRaw(mem, ptr, length, []string{"text"})
	if err != nil {
		return TextValue{}, err
	}
	return TextValue{data: data, enc: UTF8}, nil
}

// LiftTextList reads a text-list header (see LowerTextList for the layout)
// and copies every element out in order. ptr 0 lifts to the empty list.
func LiftTextList(mem Memory, ptr uint32) (TextList, error) {
	if ptr == 0 {
		return TextList{}, nil
	}

	count, err := mem.ReadU32(ptr)
	if err != nil {
		return TextList{}, errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read list count")
	}
	if count > MaxListLength {
		return TextList{}, errors.Overflow(errors.PhaseLift, []string{"list"}, count, "text list")
	}
	if count == 0 {
		return TextList{}, nil
	}

	items := make([]TextValue, count)
	for i := uint32(0); i < count; i++ {
		entry := ptr + 4 + i*8
		itemPtr, err := mem.ReadU32(entry)
		if err != nil {
			return TextList{}, errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read list entry")
		}
		itemLen, err := mem.ReadU32(entry + 4)
		if err != nil {
			return TextList{}, errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read list entry")
		}
		items[i], err = LiftText(mem, itemPtr, itemLen)
		if err != nil {
			return TextList{}, err
		}
	}
	return TextList{items: items}, nil
}

func liftRaw(mem Memory, ptr, length uint32, path []string) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if ptr == 0 {
		return nil, errors.New(errors.PhaseLift, errors.KindInvalidInput).
			Path(path...).
			Detail("non-empty value at null pointer").
			Build()
	}
	if length > MaxValueSize {
		return nil, errors.Overflow(errors.PhaseLift, path, length, "host buffer")
	}

	src, err := mem.Read(ptr, length)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read value")
	}
	// Memory implementations may return a view into live guest memory.
	data := make([]byte, length)
	copy(data, src)
	return data, nil
}
