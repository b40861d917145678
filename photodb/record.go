// Package photodb decodes the Photo Database container that portable media devices use to
// catalogue photographs.
package photodb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
)

// Record tags as they appear in the first four bytes of every record.
const (
	TagFileHeader = "mhfd"
	TagDataSet    = "mhsd"
	TagImageList  = "mhli"
	TagImageItem  = "mhii"
	TagObject     = "mhod"
	TagImageName  = "mhni"
	TagAlbumList  = "mhla"
	TagAlbum      = "mhba"
	TagAlbumItem  = "mhia"
	TagFileList   = "mhlf"
	TagFileItem   = "mhif"
)

// minHeaderLength covers the tag, the header length and the length/count field.
const minHeaderLength = 12

var (
	ErrTruncated = errors.New("record extends past end of buffer")
	ErrMalformed = errors.New("malformed record header")
)

// DecodeError reports a structural failure together with the record that caused it.
type DecodeError struct {
	Tag    string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("photodb: record at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("photodb: %s record at offset %d: %v", e.Tag, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Record is one classified record. Header and Payload alias the decoder's buffer.
type Record struct {
	Tag    string
	Offset int
	Depth  int
	// HeaderLength is the declared size of the fixed header.
	HeaderLength uint32
	// Length is the declared total length, or the child count for list records.
	Length uint32
	Header  []byte
	Payload []byte
	// ObjectType is only meaningful when Tag is TagObject.
	ObjectType MhodType
}

// IsList reports whether the record is a list header whose length field is a child count.
func (r Record) IsList() bool {
	return isListTag(r.Tag)
}

func (r Record) Uint16At(off int) (uint16, error) {
	if off < 0 || off+2 > len(r.Header) {
		return 0, r.fieldError(off)
	}
	return binary.LittleEndian.Uint16(r.Header[off:]), nil
}

func (r Record) Uint32At(off int) (uint32, error) {
	if off < 0 || off+4 > len(r.Header) {
		return 0, r.fieldError(off)
	}
	return binary.LittleEndian.Uint32(r.Header[off:]), nil
}

func (r Record) Uint64At(off int) (uint64, error) {
	if off < 0 || off+8 > len(r.Header) {
		return 0, r.fieldError(off)
	}
	return binary.LittleEndian.Uint64(r.Header[off:]), nil
}

func (r Record) fieldError(off int) error {
	return &DecodeError{
		Tag:    r.Tag,
		Offset: r.Offset,
		Err:    fmt.Errorf("fixed field at +%d outside %d byte header: %w", off, len(r.Header), ErrTruncated),
	}
}

// Decoder walks the nested records of a Photo Database buffer.
type Decoder struct {
	buf []byte
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Records returns a pre-order walk over every record in the buffer. Each call starts a new
// pass. A structural failure is yielded once as the final element.
func (d *Decoder) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		d.walk(0, len(d.buf), 0, yield)
	}
}

// walk yields the records laid out in buf[start:end]. It returns false when iteration must stop.
func (d *Decoder) walk(start, end, depth int, yield func(Record, error) bool) bool {
	off := start
	// List headers own the records that follow them inside the same parent.
	listDepth := 0
	for off < end {
		rec, extent, err := d.readRecord(off, end, depth+listDepth)
		if err != nil {
			yield(Record{}, err)
			return false
		}
		if !yield(rec, nil) {
			return false
		}
		if rec.IsList() {
			listDepth = 1
			off += extent
			continue
		}
		if descends(rec) {
			if !d.walk(off+int(rec.HeaderLength), off+extent, rec.Depth+1, yield) {
				return false
			}
		}
		off += extent
	}
	return true
}

func (d *Decoder) readRecord(off, end, depth int) (Record, int, error) {
	if end-off < minHeaderLength {
		return Record{}, 0, &DecodeError{
			Offset: off,
			Err:    fmt.Errorf("%d bytes left, need %d for a record header: %w", end-off, minHeaderLength, ErrTruncated),
		}
	}
	tag := string(d.buf[off : off+4])
	headerLength := binary.LittleEndian.Uint32(d.buf[off+4:])
	length := binary.LittleEndian.Uint32(d.buf[off+8:])

	if headerLength < minHeaderLength {
		return Record{}, 0, &DecodeError{
			Tag:    tag,
			Offset: off,
			Err:    fmt.Errorf("header length %d below minimum %d: %w", headerLength, minHeaderLength, ErrMalformed),
		}
	}
	if uint64(headerLength) > uint64(end-off) {
		return Record{}, 0, &DecodeError{
			Tag:    tag,
			Offset: off,
			Err:    fmt.Errorf("header length %d exceeds %d remaining bytes: %w", headerLength, end-off, ErrTruncated),
		}
	}

	extent := int(headerLength)
	if !isListTag(tag) {
		if length < headerLength {
			return Record{}, 0, &DecodeError{
				Tag:    tag,
				Offset: off,
				Err:    fmt.Errorf("total length %d smaller than header length %d: %w", length, headerLength, ErrMalformed),
			}
		}
		if uint64(length) > uint64(end-off) {
			return Record{}, 0, &DecodeError{
				Tag:    tag,
				Offset: off,
				Err:    fmt.Errorf("declared length %d exceeds %d remaining bytes: %w", length, end-off, ErrTruncated),
			}
		}
		extent = int(length)
	}

	rec := Record{
		Tag:          tag,
		Offset:       off,
		Depth:        depth,
		HeaderLength: headerLength,
		Length:       length,
		Header:       d.buf[off : off+int(headerLength)],
		Payload:      d.buf[off+int(headerLength) : off+extent],
	}
	if tag == TagObject {
		t, err := rec.Uint16At(12)
		if err != nil {
			return Record{}, 0, err
		}
		rec.ObjectType = MhodType(t)
	}
	return rec, extent, nil
}

func isListTag(tag string) bool {
	switch tag {
	case TagImageList, TagAlbumList, TagFileList:
		return true
	}
	return false
}

func descends(rec Record) bool {
	switch rec.Tag {
	case TagFileHeader, TagDataSet, TagImageItem, TagAlbum, TagImageName, TagFileItem:
		return true
	case TagObject:
		return rec.ObjectType.IsContainer()
	}
	return false
}
