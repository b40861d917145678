package photodb_test

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/jyothri/ipodphotos/photodb"
	"github.com/jyothri/ipodphotos/photodb/photodbtest"
)

type walked struct {
	tag   string
	depth int
}

func walk(t *testing.T, buf []byte) ([]walked, error) {
	t.Helper()
	var out []walked
	for rec, err := range photodb.NewDecoder(buf).Records() {
		if err != nil {
			return out, err
		}
		out = append(out, walked{rec.Tag, rec.Depth})
	}
	return out, nil
}

func TestRecords_PreOrderWalk(t *testing.T) {
	buf := photodbtest.FileHeader(2,
		photodbtest.DataSet(1, photodbtest.List(photodb.TagImageList, 1),
			photodbtest.ImageItem(1, 10, 20, 30,
				photodbtest.ContainerObject(photodb.ThumbnailImage,
					photodbtest.ImageName(1019, 0, 100, 10, 10,
						photodbtest.StringObject(photodb.FileName, ":Thumbs:F1019_1.ithmb"))),
				photodbtest.UTF8StringObject(photodb.FileName, "IMG_0001.JPG"))),
		photodbtest.DataSet(3, photodbtest.List(photodb.TagFileList, 1), photodbtest.FileItem(1019, 100)),
	)

	expected := []walked{
		{photodb.TagFileHeader, 0},
		{photodb.TagDataSet, 1},
		{photodb.TagImageList, 2},
		{photodb.TagImageItem, 3},
		{photodb.TagObject, 4},
		{photodb.TagImageName, 5},
		{photodb.TagObject, 6},
		{photodb.TagObject, 4},
		{photodb.TagDataSet, 1},
		{photodb.TagFileList, 2},
		{photodb.TagFileItem, 3},
	}

	got, err := walk(t, buf)
	if err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	if len(got) != len(expected) {
		t.Fatalf("walked %d records, expected %d: %v", len(got), len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("record %d = %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestRecords_Restartable(t *testing.T) {
	d := photodb.NewDecoder(photodbtest.Sample())

	count := func() int {
		n := 0
		for _, err := range d.Records() {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			n++
		}
		return n
	}

	first, second := count(), count()
	if first == 0 || first != second {
		t.Errorf("expected equal non-zero passes, got %d and %d", first, second)
	}
}

func TestRecords_StopEarly(t *testing.T) {
	n := 0
	for range photodb.NewDecoder(photodbtest.Sample()).Records() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3 records, got %d", n)
	}
}

func TestRecords_UnknownTagSkipped(t *testing.T) {
	unknown := photodbtest.Record("mhzz", 0x20, nil, []byte("opaque payload that is not a record"))
	buf := photodbtest.FileHeader(1, unknown,
		photodbtest.DataSet(3, photodbtest.List(photodb.TagFileList, 1), photodbtest.FileItem(1, 2)))

	got, err := walk(t, buf)
	if err != nil {
		t.Fatalf("walk returned error: %v", err)
	}
	if len(got) != 5 || got[1].tag != "mhzz" || got[2].tag != photodb.TagDataSet {
		t.Errorf("unexpected walk %v", got)
	}
}

func TestRecords_ObjectType(t *testing.T) {
	for rec, err := range photodb.NewDecoder(photodbtest.UTF8StringObject(photodb.FileName, "a")).Records() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.ObjectType != photodb.FileName {
			t.Errorf("expected FileName, got %v", rec.ObjectType)
		}
		if rec.Length != uint32(len(rec.Header)+len(rec.Payload)) {
			t.Errorf("declared length %d does not cover header and payload", rec.Length)
		}
	}
}

func TestRecords_StructuralFailures(t *testing.T) {
	valid := photodbtest.Sample()

	truncated := photodbtest.FileHeader(1,
		photodbtest.DataSet(3, photodbtest.List(photodb.TagFileList, 1), photodbtest.FileItem(1, 2)))
	truncated = truncated[:len(truncated)-8]
	// Keep the outer header consistent so the failure is on the last record.
	binary.LittleEndian.PutUint32(truncated[8:], uint32(len(truncated)))
	dataSetAt := photodbtest.FileHeaderLength
	binary.LittleEndian.PutUint32(truncated[dataSetAt+8:], uint32(len(truncated)-dataSetAt))

	shortHeader := slices.Concat(valid, []byte("mhii"))

	badHeaderLength := photodbtest.Record(photodb.TagFileHeader, photodbtest.FileHeaderLength, nil)
	binary.LittleEndian.PutUint32(badHeaderLength[4:], 4)

	totalBelowHeader := photodbtest.Record(photodb.TagFileHeader, photodbtest.FileHeaderLength, nil)
	binary.LittleEndian.PutUint32(totalBelowHeader[8:], 16)

	tests := []struct {
		name     string
		buf      []byte
		sentinel error
		tag      string
	}{
		{"truncated final record", truncated, photodb.ErrTruncated, photodb.TagFileItem},
		{"trailing partial header", shortHeader, photodb.ErrTruncated, ""},
		{"header length too small", badHeaderLength, photodb.ErrMalformed, photodb.TagFileHeader},
		{"total below header", totalBelowHeader, photodb.ErrMalformed, photodb.TagFileHeader},
		{"cut buffer", valid[:len(valid)/2], photodb.ErrTruncated, photodb.TagFileHeader},
	}

	for _, tt := range tests {
		_, err := walk(t, tt.buf)
		if !errors.Is(err, tt.sentinel) {
			t.Errorf("%s: error = %v, expected %v", tt.name, err, tt.sentinel)
			continue
		}
		var decodeErr *photodb.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("%s: expected *DecodeError, got %T", tt.name, err)
			continue
		}
		if decodeErr.Tag != tt.tag {
			t.Errorf("%s: failing tag = %q, expected %q", tt.name, decodeErr.Tag, tt.tag)
		}
	}
}

func TestRecord_FieldAccessors(t *testing.T) {
	h := make([]byte, 16)
	binary.LittleEndian.PutUint32(h[12:], 0xdeadbeef)
	rec := photodb.Record{Tag: photodb.TagImageItem, Header: h}

	v, err := rec.Uint32At(12)
	if err != nil || v != 0xdeadbeef {
		t.Errorf("Uint32At(12) = %x, %v", v, err)
	}
	if _, err := rec.Uint32At(14); !errors.Is(err, photodb.ErrTruncated) {
		t.Errorf("Uint32At(14) error = %v, expected ErrTruncated", err)
	}
	if _, err := rec.Uint64At(12); !errors.Is(err, photodb.ErrTruncated) {
		t.Errorf("Uint64At(12) error = %v, expected ErrTruncated", err)
	}
	if _, err := rec.Uint16At(-1); !errors.Is(err, photodb.ErrTruncated) {
		t.Errorf("Uint16At(-1) error = %v, expected ErrTruncated", err)
	}
}
