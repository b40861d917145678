package db

import (
	"time"
)

// PhotoDbImage is one decoded image on its way to the photodbimage table.
type PhotoDbImage struct {
	ImageId            int64
	Filename           string
	SizeBytes          int64
	SizeHuman          string
	OriginalDateEpoch  int64
	OriginalDate       *time.Time
	DigitizedDateEpoch int64
	DigitizedDate      *time.Time
	DatesValid         bool
	UnknownObjects     string
	Thumbnails         []PhotoDbThumbnail
}

type PhotoDbThumbnail struct {
	Filename      string
	CorrelationId int64
	IthmbOffset   int64
	Size          int64
	Width         int
	Height        int
}

type PhotoDbAlbum struct {
	AlbumId  int64
	Name     string
	ImageIds []int64
}
