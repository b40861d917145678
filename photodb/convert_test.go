package photodb

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"testing"
	"time"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    uint64
		expected string
	}{
		{0, "0.00 KB"},
		{1, "0.00 KB"},
		{15, "0.01 KB"},
		{45, "0.04 KB"},
		{125, "0.12 KB"},
		{999, "1.00 KB"},
		{1000, "1.00 KB"},
		{532000, "532.00 KB"},
		{999_994, "999.99 KB"},
		{999_999, "1.00 MB"},
		{1_000_000, "1.00 MB"},
		{1_245_916, "1.25 MB"},
		{25_000_000, "25.00 MB"},
	}

	for _, tt := range tests {
		result := FormatSize(tt.bytes)
		if result != tt.expected {
			t.Errorf("FormatSize(%d) = %q, expected %q", tt.bytes, result, tt.expected)
		}
	}
}

func TestFormatSize_RoundsKBOnce(t *testing.T) {
	for bytes := uint64(0); bytes < 999_990; bytes++ {
		expected := fmt.Sprintf("%.2f KB", float64(bytes)/1000)
		if result := FormatSize(bytes); result != expected {
			t.Fatalf("FormatSize(%d) = %q, expected %q", bytes, result, expected)
		}
	}
}

func TestFormatSize_DisplayStaysBelowThousand(t *testing.T) {
	pattern := regexp.MustCompile(`^(\d+\.\d\d) (KB|MB)$`)
	for bytes := uint64(0); bytes < 1_100_000_000; bytes = bytes*3 + 7 {
		result := FormatSize(bytes)
		m := pattern.FindStringSubmatch(result)
		if m == nil {
			t.Fatalf("FormatSize(%d) = %q has unexpected shape", bytes, result)
		}
		if bytes < 1_000_000_000 && len(m[1]) > len("999.99") {
			t.Errorf("FormatSize(%d) = %q, value should stay below 1000", bytes, result)
		}
	}
}

func TestDecodeTimestamp_ZeroIsReferenceEpoch(t *testing.T) {
	ts, err := DecodeTimestamp(0)
	if err != nil {
		t.Fatalf("DecodeTimestamp(0) returned error: %v", err)
	}
	if !ts.Equal(MacEpoch) {
		t.Errorf("DecodeTimestamp(0) = %v, expected %v", ts, MacEpoch)
	}
	if ts.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", ts.Location())
	}
}

func TestDecodeTimestamp_KnownInstants(t *testing.T) {
	tests := []struct {
		epoch    uint64
		expected time.Time
	}{
		{2082844800, time.Unix(0, 0).UTC()},
		{3300000000, time.Unix(3300000000-2082844800, 0).UTC()},
		{86400, time.Date(1904, time.January, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		ts, err := DecodeTimestamp(tt.epoch)
		if err != nil {
			t.Errorf("DecodeTimestamp(%d) returned error: %v", tt.epoch, err)
			continue
		}
		if !ts.Equal(tt.expected) {
			t.Errorf("DecodeTimestamp(%d) = %v, expected %v", tt.epoch, ts, tt.expected)
		}
		again, _ := DecodeTimestamp(tt.epoch)
		if !again.Equal(ts) {
			t.Errorf("DecodeTimestamp(%d) is not deterministic", tt.epoch)
		}
	}
}

func TestDecodeTimestamp_OutOfRange(t *testing.T) {
	last, err := DecodeTimestamp(maxEpoch)
	if err != nil {
		t.Fatalf("DecodeTimestamp(maxEpoch) returned error: %v", err)
	}
	if last.Year() != 9999 {
		t.Errorf("expected year 9999 at maxEpoch, got %d", last.Year())
	}

	for _, epoch := range []uint64{maxEpoch + 1, math.MaxInt64, math.MaxUint64} {
		_, err := DecodeTimestamp(epoch)
		if !errors.Is(err, ErrTimestampRange) {
			t.Errorf("DecodeTimestamp(%d) error = %v, expected ErrTimestampRange", epoch, err)
		}
	}
}

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"IMG_0001.JPG", "IMG_0001.JPG"},
		{":Thumbs:F1019_1.ithmb", "/Thumbs/F1019_1.ithmb"},
		{":Full Resolution:2008:07:27:IMG_0001.JPG", "/Full Resolution/2008/07/27/IMG_0001.JPG"},
		{`Photos\Thumbs:F1019_1.ithmb`, "Photos/Thumbs/F1019_1.ithmb"},
		{"/already/canonical.jpg", "/already/canonical.jpg"},
	}

	for _, tt := range tests {
		result := CanonicalPath(tt.input)
		if result != tt.expected {
			t.Errorf("CanonicalPath(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
		if again := CanonicalPath(result); again != result {
			t.Errorf("CanonicalPath is not idempotent for %q: %q", result, again)
		}
	}
}
