package photodb

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// String bodies start with length, encoding and an unknown word.
const stringPreambleLength = 12

const encodingUTF16LE = 2

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeString reads the body of an AlbumName or FileName metadata object. The result never
// aliases the record's buffer.
func decodeString(rec Record) (string, error) {
	body := rec.Payload
	if len(body) < stringPreambleLength {
		return "", &DecodeError{
			Tag:    rec.Tag,
			Offset: rec.Offset,
			Err:    fmt.Errorf("string body of %d bytes has no preamble: %w", len(body), ErrMalformed),
		}
	}
	length := binary.LittleEndian.Uint32(body)
	encoding := binary.LittleEndian.Uint32(body[4:])
	if uint64(length) > uint64(len(body)-stringPreambleLength) {
		return "", &DecodeError{
			Tag:    rec.Tag,
			Offset: rec.Offset,
			Err:    fmt.Errorf("string length %d exceeds %d byte body: %w", length, len(body)-stringPreambleLength, ErrTruncated),
		}
	}
	raw := body[stringPreambleLength : stringPreambleLength+int(length)]

	if encoding == encodingUTF16LE {
		s, err := utf16le.NewDecoder().Bytes(raw)
		if err != nil {
			return "", &DecodeError{Tag: rec.Tag, Offset: rec.Offset, Err: fmt.Errorf("utf-16 string: %w", err)}
		}
		return string(s), nil
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
