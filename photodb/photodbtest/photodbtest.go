// Package photodbtest lays out Photo Database containers for tests.
package photodbtest

import (
	"bytes"
	"encoding/binary"

	"github.com/jyothri/ipodphotos/photodb"
	"golang.org/x/text/encoding/unicode"
)

// Header lengths the device writes for each record kind.
const (
	FileHeaderLength = 0x84
	DataSetLength    = 0x60
	ListLength       = 0x5c
	ImageItemLength  = 0x98
	ObjectLength     = 0x18
	ImageNameLength  = 0x4c
	AlbumLength      = 0x94
	AlbumItemLength  = 0x28
	FileItemLength   = 0x7c
)

func put16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func put32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

// Record builds a record whose total length covers its header and children.
func Record(tag string, headerLength int, fill func(h []byte), children ...[]byte) []byte {
	h := make([]byte, headerLength)
	copy(h, tag)
	put32(h, 4, uint32(headerLength))
	if fill != nil {
		fill(h)
	}
	body := bytes.Join(children, nil)
	put32(h, 8, uint32(headerLength+len(body)))
	return append(h, body...)
}

func List(tag string, count int) []byte {
	h := make([]byte, ListLength)
	copy(h, tag)
	put32(h, 4, ListLength)
	put32(h, 8, uint32(count))
	return h
}

func FileHeader(nextID uint32, dataSets ...[]byte) []byte {
	return Record(photodb.TagFileHeader, FileHeaderLength, func(h []byte) {
		put32(h, 20, uint32(len(dataSets)))
		put32(h, 28, nextID)
	}, dataSets...)
}

func DataSet(index uint16, children ...[]byte) []byte {
	return Record(photodb.TagDataSet, DataSetLength, func(h []byte) {
		put16(h, 12, index)
	}, children...)
}

func ImageItem(id, original, digitized, size uint32, objects ...[]byte) []byte {
	return Record(photodb.TagImageItem, ImageItemLength, func(h []byte) {
		put32(h, 12, uint32(len(objects)))
		put32(h, 16, id)
		put32(h, 40, original)
		put32(h, 44, digitized)
		put32(h, 48, size)
	}, objects...)
}

func ContainerObject(t photodb.MhodType, children ...[]byte) []byte {
	return Record(photodb.TagObject, ObjectLength, func(h []byte) {
		put16(h, 12, uint16(t))
	}, children...)
}

// StringObject encodes s as UTF-16LE, the way devices write metadata strings.
func StringObject(t photodb.MhodType, s string) []byte {
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return stringObject(t, raw, 2)
}

// UTF8StringObject stores s with the UTF-8 encoding marker.
func UTF8StringObject(t photodb.MhodType, s string) []byte {
	return stringObject(t, []byte(s), 1)
}

func stringObject(t photodb.MhodType, raw []byte, encoding uint32) []byte {
	body := make([]byte, 12, 12+len(raw)+4)
	put32(body, 0, uint32(len(raw)))
	put32(body, 4, encoding)
	body = append(body, raw...)
	pad := (4 - len(raw)%4) % 4
	body = append(body, make([]byte, pad)...)
	return Record(photodb.TagObject, ObjectLength, func(h []byte) {
		put16(h, 12, uint16(t))
		h[15] = byte(pad)
	}, body)
}

func ImageName(correlationID, offset, size uint32, height, width uint16, children ...[]byte) []byte {
	return Record(photodb.TagImageName, ImageNameLength, func(h []byte) {
		put32(h, 12, uint32(len(children)))
		put32(h, 16, correlationID)
		put32(h, 20, offset)
		put32(h, 24, size)
		put16(h, 32, height)
		put16(h, 34, width)
	}, children...)
}

func Album(id uint32, name string, imageIDs ...uint32) []byte {
	children := [][]byte{StringObject(photodb.AlbumName, name)}
	for _, imageID := range imageIDs {
		children = append(children, Record(photodb.TagAlbumItem, AlbumItemLength, func(h []byte) {
			put32(h, 16, imageID)
		}))
	}
	return Record(photodb.TagAlbum, AlbumLength, func(h []byte) {
		put32(h, 12, 1)
		put32(h, 16, uint32(len(imageIDs)))
		put32(h, 20, id)
	}, children...)
}

func FileItem(correlationID, size uint32) []byte {
	return Record(photodb.TagFileItem, FileItemLength, func(h []byte) {
		put32(h, 16, correlationID)
		put32(h, 20, size)
	})
}

// Sample has two images, the first with one thumbnail, an album holding both and one
// thumbnail file.
func Sample() []byte {
	first := ImageItem(100, 3300000000, 3300000060, 1245916,
		ContainerObject(photodb.ThumbnailImage,
			ImageName(1019, 0, 20000, 100, 130,
				StringObject(photodb.FileName, ":Thumbs:F1019_1.ithmb"))),
		ContainerObject(photodb.Container,
			ImageName(1, 0, 1245916, 1200, 1600,
				StringObject(photodb.FileName, ":Full Resolution:2008:07:27:IMG_0001.JPG"))))
	second := ImageItem(101, 3300000100, 3300000100, 532000,
		StringObject(photodb.FileName, ":DCIM:IMG_0002.JPG"))

	return FileHeader(102,
		DataSet(1, List(photodb.TagImageList, 2), first, second),
		DataSet(2, List(photodb.TagAlbumList, 1), Album(7, "Holiday", 100, 101)),
		DataSet(3, List(photodb.TagFileList, 1), FileItem(1019, 20000)))
}

// Truncated is Sample cut short inside its first image.
func Truncated() []byte {
	buf := Sample()
	return buf[:FileHeaderLength+DataSetLength+ListLength+ImageItemLength+40]
}
