package photodb

import "testing"

func TestDecodeMhodType(t *testing.T) {
	tests := []struct {
		code     uint16
		expected string
	}{
		{1, "Album Name"},
		{2, "Thumbnail image"},
		{3, "File name"},
		{4, "Unsupported (4)"},
		{5, "Container (unused)"},
		{6, "Unsupported (6)"},
		{0, "Unsupported (0)"},
		{65535, "Unsupported (65535)"},
	}

	for _, tt := range tests {
		result := DecodeMhodType(tt.code)
		if result != tt.expected {
			t.Errorf("DecodeMhodType(%d) = %q, expected %q", tt.code, result, tt.expected)
		}
	}
}

func TestMhodType_Classes(t *testing.T) {
	tests := []struct {
		t         MhodType
		known     bool
		container bool
		str       bool
	}{
		{AlbumName, true, false, true},
		{ThumbnailImage, true, true, false},
		{FileName, true, false, true},
		{Container, true, true, false},
		{MhodType(6), false, false, false},
	}

	for _, tt := range tests {
		if got := tt.t.Known(); got != tt.known {
			t.Errorf("%v.Known() = %v, expected %v", tt.t, got, tt.known)
		}
		if got := tt.t.IsContainer(); got != tt.container {
			t.Errorf("%v.IsContainer() = %v, expected %v", tt.t, got, tt.container)
		}
		if got := tt.t.IsString(); got != tt.str {
			t.Errorf("%v.IsString() = %v, expected %v", tt.t, got, tt.str)
		}
	}
}
