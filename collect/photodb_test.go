package collect

import (
	"reflect"
	"testing"

	"github.com/jyothri/ipodphotos/db"
	"github.com/jyothri/ipodphotos/photodb"
	"github.com/jyothri/ipodphotos/photodb/photodbtest"
)

func TestToDbImage(t *testing.T) {
	database, err := photodb.Decode(photodbtest.Sample())
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	got := toDbImage(database.Images[0])
	if got.ImageId != 100 {
		t.Errorf("expected image id 100, got %d", got.ImageId)
	}
	if got.Filename != "/Full Resolution/2008/07/27/IMG_0001.JPG" {
		t.Errorf("unexpected filename %q", got.Filename)
	}
	if got.SizeBytes != 1245916 || got.SizeHuman != "1.25 MB" {
		t.Errorf("unexpected size %d %q", got.SizeBytes, got.SizeHuman)
	}
	if got.OriginalDate == nil || got.DigitizedDate == nil || !got.DatesValid {
		t.Errorf("expected converted dates, got %v %v valid=%v", got.OriginalDate, got.DigitizedDate, got.DatesValid)
	}
	if got.UnknownObjects != "" {
		t.Errorf("expected no unknown objects, got %q", got.UnknownObjects)
	}
	expectedThumbs := []db.PhotoDbThumbnail{{
		Filename:      "/Thumbs/F1019_1.ithmb",
		CorrelationId: 1019,
		Size:          20000,
		Width:         130,
		Height:        100,
	}}
	if !reflect.DeepEqual(got.Thumbnails, expectedThumbs) {
		t.Errorf("unexpected thumbnails %+v", got.Thumbnails)
	}
}

func TestToDbImage_OutOfRangeDate(t *testing.T) {
	var img photodb.Image
	img.SetOriginalDate(1 << 62)
	img.SetDigitizedDate(0)

	got := toDbImage(img)
	if got.OriginalDate != nil {
		t.Errorf("expected no original date, got %v", got.OriginalDate)
	}
	if got.DigitizedDate == nil || !got.DigitizedDate.Equal(photodb.MacEpoch) {
		t.Errorf("expected digitized date at the Mac epoch, got %v", got.DigitizedDate)
	}
	if got.DatesValid {
		t.Error("expected dates to be invalid")
	}
}

func TestToDbAlbums(t *testing.T) {
	got := toDbAlbums([]photodb.Album{{ID: 7, Name: "Holiday", ImageIDs: []uint32{100, 101}}})
	want := []db.PhotoDbAlbum{{AlbumId: 7, Name: "Holiday", ImageIds: []int64{100, 101}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("toDbAlbums = %+v, want %+v", got, want)
	}
}

func TestMd5Hex(t *testing.T) {
	if got := md5Hex(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("md5Hex(nil) = %s", got)
	}
}
