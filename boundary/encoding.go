package boundary

import (
	stdbinary "encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/soundfold/tagbridge/errors"
)

// Encoding identifies the byte encoding of a TextValue.
type Encoding uint8

const (
	// UTF8 is the default encoding for text built from plain Go strings.
	UTF8 Encoding = iota

	// Latin1 is ISO 8859-1. Encoding fails for runes outside its repertoire.
	Latin1

	// UTF16 is native byte order with a BOM.
	UTF16

	// UTF16BE and UTF16LE are fixed byte order without a BOM.
	UTF16BE
	UTF16LE
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case Latin1:
		return "latin1"
	case UTF16:
		return "utf16"
	case UTF16BE:
		return "utf16be"
	case UTF16LE:
		return "utf16le"
	}
	return "unknown"
}

func nativeUTF16Order() unicode.Endianness {
	if stdbinary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0001 {
		return unicode.LittleEndian
	}
	return unicode.BigEndian
}

// encodeText converts a Go string into the byte form of enc.
func encodeText(s string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8:
		if !utf8.ValidString(s) {
			return nil, errors.InvalidUTF8(errors.PhaseConvert, nil, []byte(s))
		}
		return []byte(s), nil
	case Latin1:
		out, err := charmap.ISO8859_1.NewEncoder().String(s)
		if err != nil {
			return nil, errors.Conversion(errors.PhaseConvert, "string", enc.String(),
				"string is not representable in Latin-1")
		}
		return []byte(out), nil
	case UTF16:
		return utf16Transform(s, nativeUTF16Order(), unicode.UseBOM)
	case UTF16BE:
		return utf16Transform(s, unicode.BigEndian, unicode.IgnoreBOM)
	case UTF16LE:
		return utf16Transform(s, unicode.LittleEndian, unicode.IgnoreBOM)
	}
	return nil, errors.Conversion(errors.PhaseConvert, "string", "unknown",
		"unknown text encoding")
}

func utf16Transform(s string, order unicode.Endianness, bom unicode.BOMPolicy) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8(errors.PhaseConvert, nil, []byte(s))
	}
	out, err := unicode.UTF16(order, bom).NewEncoder().String(s)
	if err != nil {
		return nil, errors.Conversion(errors.PhaseConvert, "string", "utf16", err.Error())
	}
	return []byte(out), nil
}

// decodeText converts encoded bytes back into a Go string. Decoding never
// fails for the supported encodings; malformed input decodes to replacement
// runes, matching the lossy direction of the boundary.
func decodeText(data []byte, enc Encoding) string {
	switch enc {
	case UTF8:
		return string(data)
	case Latin1:
		out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
		return string(out)
	case UTF16:
		out, _ := unicode.UTF16(nativeUTF16Order(), unicode.UseBOM).NewDecoder().Bytes(data)
		return string(out)
	case UTF16BE:
		out, _ := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		return string(out)
	case UTF16LE:
		out, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
		return string(out)
	}
	return string(data)
}
