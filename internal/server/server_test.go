package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/imageio"
	"blob-recolor/internal/raster"
)

var green = colorutil.Color{G: 200}

// upload builds a multipart request with a 5×4 PNG holding a 2×2 and a
// 1×1 green blob on white.
func upload(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	img, _ := raster.Filled(5, 4, colorutil.White)
	for _, p := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {4, 3}} {
		img.SetXY(p[0], p[1], green)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("img", "upload.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := imageio.Encode(part, img, imageio.PNG); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/detect", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDetect_RGBFields(t *testing.T) {
	tmp := t.TempDir()
	s := New(Options{TempDir: tmp})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, upload(t, map[string]string{
		"red": "0", "green": "200", "blue": "0", "dist": "5", "k": "2",
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Blob-Count"); got != "2" {
		t.Errorf("X-Blob-Count = %q, want 2", got)
	}
	if got := rec.Header().Get("X-Blob-Sizes"); got != "4,1" {
		t.Errorf("X-Blob-Sizes = %q, want 4,1", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}

	out, err := imageio.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if c := out.AtXY(0, 0); c != green {
		t.Errorf("largest blob = %v, want %v", c, green)
	}
	// Rank 1 of 2: factor 2/3.
	if c := out.AtXY(4, 3); c != (colorutil.Color{G: 133}) {
		t.Errorf("second blob = %v, want (0,133,0)", c)
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("temp upload not removed: %d files left", len(entries))
	}
}

func TestDetect_RemovesSpilledFormFiles(t *testing.T) {
	uploads, spill := t.TempDir(), t.TempDir()
	t.Setenv("TMPDIR", spill)
	s := New(Options{TempDir: uploads, MaxMemoryBytes: 1})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, upload(t, map[string]string{"colorPickerValue": "#00c800"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}

	entries, _ := os.ReadDir(spill)
	if len(entries) != 0 {
		t.Errorf("%d multipart files left in %s", len(entries), spill)
	}
}

func TestDetect_ColorPickerDefaultK(t *testing.T) {
	s := New(Options{TempDir: t.TempDir()})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, upload(t, map[string]string{
		"colorPickerValue": "#00c800", "dist": "0", "format": "webp",
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Blob-Count"); got != "1" {
		t.Errorf("X-Blob-Count = %q, want 1 (default k)", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/webp" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestDetect_BadRequests(t *testing.T) {
	s := New(Options{TempDir: t.TempDir()})

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"no color", map[string]string{"dist": "5"}},
		{"bad picker", map[string]string{"colorPickerValue": "green"}},
		{"bad dist", map[string]string{"colorPickerValue": "#00c800", "dist": "far"}},
		{"k zero", map[string]string{"colorPickerValue": "#00c800", "k": "0"}},
		{"bad format", map[string]string{"colorPickerValue": "#00c800", "format": "gif"}},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, upload(t, tt.fields))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rec.Code)
		}
	}
}

func TestDetect_MissingFile(t *testing.T) {
	s := New(Options{TempDir: t.TempDir()})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("colorPickerValue", "#ff0000")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/detect", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := New(Options{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
