package photodb

import "fmt"

// MhodType is the 16-bit tag carried by a metadata object ("mhod") record.
type MhodType uint16

// See "MHOD types" in the Photo Database format description. Any other value is unsupported
// but still valid data; firmware has been seen writing type 6.
const (
	AlbumName      MhodType = 1
	ThumbnailImage MhodType = 2
	FileName       MhodType = 3
	Container      MhodType = 5
)

// Known reports whether t is one of the documented tags.
func (t MhodType) Known() bool {
	switch t {
	case AlbumName, ThumbnailImage, FileName, Container:
		return true
	}
	return false
}

// IsContainer reports whether objects of this type wrap an image name record.
func (t MhodType) IsContainer() bool {
	return t == ThumbnailImage || t == Container
}

// IsString reports whether objects of this type carry a string body.
func (t MhodType) IsString() bool {
	return t == AlbumName || t == FileName
}

func (t MhodType) String() string {
	switch t {
	case AlbumName:
		return "Album Name"
	case ThumbnailImage:
		return "Thumbnail image"
	case FileName:
		return "File name"
	case Container:
		return "Container (unused)"
	}
	return fmt.Sprintf("Unsupported (%d)", uint16(t))
}

// DecodeMhodType returns the descriptive label for a raw type code. It never fails.
func DecodeMhodType(code uint16) string {
	return MhodType(code).String()
}
