package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestMhodTypeHandler(t *testing.T) {
	r := mux.NewRouter()
	api(r)

	tests := []struct {
		path   string
		status int
		want   MhodTypeResponse
	}{
		{"/api/mhod/1", http.StatusOK, MhodTypeResponse{Code: 1, Label: "Album Name", Known: true}},
		{"/api/mhod/3", http.StatusOK, MhodTypeResponse{Code: 3, Label: "File name", Known: true}},
		{"/api/mhod/6", http.StatusOK, MhodTypeResponse{Code: 6, Label: "Unsupported (6)", Known: false}},
		{"/api/mhod/abc", http.StatusBadRequest, MhodTypeResponse{}},
		{"/api/mhod/70000", http.StatusBadRequest, MhodTypeResponse{}},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, rec.Code)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var got MhodTypeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Errorf("%s: failed to parse response: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

func TestGetPageNumber(t *testing.T) {
	tests := []struct {
		vars map[string]string
		want int
	}{
		{map[string]string{}, 1},
		{map[string]string{"page": "3"}, 3},
		{map[string]string{"page": "0"}, 1},
		{map[string]string{"page": "x"}, 1},
	}
	for _, tt := range tests {
		if got := getPageNumber(tt.vars); got != tt.want {
			t.Errorf("getPageNumber(%v) = %d, want %d", tt.vars, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{16 << 10, "16.0 KB"},
		{64 << 20, "64.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetDisplayName(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", "key"},
		{"not-an-email", "key"},
		{"abc@example.com", "key"},
		{"photolover@example.com", "pho****er@example.com"},
	}
	for _, tt := range tests {
		if got := getDisplayName(tt.email, "key"); got != tt.want {
			t.Errorf("getDisplayName(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
