package collect

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jyothri/ipodphotos/photodb"
	"github.com/jyothri/ipodphotos/photodb/photodbtest"
)

func TestDecodeUpload(t *testing.T) {
	database, err := DecodeUpload(bytes.NewReader(photodbtest.Sample()), 1<<20)
	if err != nil {
		t.Fatalf("DecodeUpload returned error: %v", err)
	}
	if len(database.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(database.Images))
	}
	if database.Images[1].Filename() != "/DCIM/IMG_0002.JPG" {
		t.Errorf("unexpected filename %q", database.Images[1].Filename())
	}
	if len(database.Albums) != 1 || database.Albums[0].Name != "Holiday" {
		t.Errorf("unexpected albums %+v", database.Albums)
	}
}

func TestDecodeUpload_Errors(t *testing.T) {
	sample := photodbtest.Sample()
	tests := []struct {
		name  string
		buf   []byte
		limit int64
		want  error
	}{
		{"over limit", sample, int64(len(sample) - 1), ErrTooLarge},
		{"truncated", photodbtest.Truncated(), 1 << 20, photodb.ErrTruncated},
		{"empty", nil, 1 << 20, photodb.ErrMalformed},
	}
	for _, tt := range tests {
		_, err := DecodeUpload(bytes.NewReader(tt.buf), tt.limit)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: DecodeUpload error = %v, want %v", tt.name, err, tt.want)
		}
	}
}
