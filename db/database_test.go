package db

import "testing"

func TestSubstr(t *testing.T) {
	tests := []struct {
		in   string
		end  int
		want string
	}{
		{"", 5, ""},
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"Größe", 3, "Grö"},
		{"/Full Resolution/IMG.JPG", 5, "/Full"},
	}
	for _, tt := range tests {
		if got := substr(tt.in, tt.end); got != tt.want {
			t.Errorf("substr(%q, %d) = %q, want %q", tt.in, tt.end, got, tt.want)
		}
	}
}

func TestJoinIds(t *testing.T) {
	tests := []struct {
		ids  []int64
		want string
	}{
		{nil, ""},
		{[]int64{100}, "100"},
		{[]int64{100, 101, 4294967295}, "100,101,4294967295"},
	}
	for _, tt := range tests {
		if got := joinIds(tt.ids); got != tt.want {
			t.Errorf("joinIds(%v) = %q, want %q", tt.ids, got, tt.want)
		}
	}
}
