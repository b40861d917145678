package photodb

import (
	"encoding/json"
	"time"
)

// Image is one catalogued photograph. The zero value is the default, unpopulated image.
// Derived values (human readable size, calendar dates) are always computed from the raw
// fields, so they cannot disagree with them.
type Image struct {
	id                 uint32
	filename           string
	fileSizeBytes      uint64
	originalDateEpoch  uint64
	digitizedDateEpoch uint64
	thumbnails         []Thumbnail
	unknownObjects     []MhodType
}

// Thumbnail references a pre-rendered copy of the image inside an .ithmb file.
type Thumbnail struct {
	Filename      string `json:"filename"`
	CorrelationID uint32 `json:"correlation_id"`
	Offset        uint32 `json:"offset"`
	Size          uint32 `json:"size"`
	Width         uint16 `json:"width"`
	Height        uint16 `json:"height"`
}

func (img *Image) SetFilename(filename string) {
	img.filename = CanonicalPath(filename)
}

func (img *Image) SetFileSize(bytes uint64) {
	img.fileSizeBytes = bytes
}

func (img *Image) SetOriginalDate(epoch uint64) {
	img.originalDateEpoch = epoch
}

func (img *Image) SetDigitizedDate(epoch uint64) {
	img.digitizedDateEpoch = epoch
}

func (img Image) ID() uint32 {
	return img.id
}

func (img Image) Filename() string {
	return img.filename
}

func (img Image) FileSizeBytes() uint64 {
	return img.fileSizeBytes
}

func (img Image) FileSizeHumanReadable() string {
	return FormatSize(img.fileSizeBytes)
}

func (img Image) OriginalDateEpoch() uint64 {
	return img.originalDateEpoch
}

// OriginalDate is the capture time. It fails only when the epoch is out of calendar range.
func (img Image) OriginalDate() (time.Time, error) {
	return DecodeTimestamp(img.originalDateEpoch)
}

func (img Image) DigitizedDateEpoch() uint64 {
	return img.digitizedDateEpoch
}

func (img Image) DigitizedDate() (time.Time, error) {
	return DecodeTimestamp(img.digitizedDateEpoch)
}

// AreDatesValid reports whether both dates were set. Epoch 0 means unset.
func (img Image) AreDatesValid() bool {
	return img.originalDateEpoch > 0 && img.digitizedDateEpoch > 0
}

// Thumbnails returns a copy of the thumbnail references.
func (img Image) Thumbnails() []Thumbnail {
	return append([]Thumbnail(nil), img.thumbnails...)
}

// UnknownObjects lists metadata object types found on the image that have no documented meaning.
func (img Image) UnknownObjects() []MhodType {
	return append([]MhodType(nil), img.unknownObjects...)
}

type imageJSON struct {
	ID                    uint32      `json:"id"`
	Filename              string      `json:"filename"`
	FileSizeBytes         uint64      `json:"file_size_bytes"`
	FileSizeHumanReadable string      `json:"file_size_human_readable"`
	OriginalDateEpoch     uint64      `json:"original_date_epoch"`
	OriginalDateTs        *time.Time  `json:"original_date_ts"`
	DigitizedDateEpoch    uint64      `json:"digitized_date_epoch"`
	DigitizedDateTs       *time.Time  `json:"digitized_date_ts"`
	Thumbnails            []Thumbnail `json:"thumbnails,omitempty"`
}

// MarshalJSON emits raw and derived fields. A date that cannot be converted is null.
func (img Image) MarshalJSON() ([]byte, error) {
	out := imageJSON{
		ID:                    img.id,
		Filename:              img.filename,
		FileSizeBytes:         img.fileSizeBytes,
		FileSizeHumanReadable: img.FileSizeHumanReadable(),
		OriginalDateEpoch:     img.originalDateEpoch,
		DigitizedDateEpoch:    img.digitizedDateEpoch,
		Thumbnails:            img.thumbnails,
	}
	if ts, err := img.OriginalDate(); err == nil {
		out.OriginalDateTs = &ts
	}
	if ts, err := img.DigitizedDate(); err == nil {
		out.DigitizedDateTs = &ts
	}
	return json.Marshal(out)
}
