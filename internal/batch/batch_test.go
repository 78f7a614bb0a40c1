package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blob-recolor/internal/colorutil"
	"blob-recolor/internal/imageio"
	"blob-recolor/internal/raster"
)

var red = colorutil.Color{R: 255}

func readManifest(t *testing.T, path string) Manifest {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

// writeInput saves a w×h white image with a filled red rectangle of rw×rh
// at the origin.
func writeInput(t *testing.T, path string, w, h, rw, rh int) {
	t.Helper()
	img, err := raster.Filled(w, h, colorutil.White)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < rh; y++ {
		for x := 0; x < rw; x++ {
			img.SetXY(x, y, red)
		}
	}
	if err := imageio.Save(path, img, imageio.PNG); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, filepath.Join(dir, "b.png"), 4, 4, 1, 1)
	writeInput(t, filepath.Join(dir, "sub", "a.png"), 4, 4, 1, 1)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	out := filepath.Join(dir, "out")
	writeInput(t, filepath.Join(out, "old.png"), 4, 4, 1, 1)

	jobs, err := Discover(dir, out, imageio.WebP)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("jobs = %+v, want 2", jobs)
	}
	if jobs[0].Name != "b.png" || jobs[1].Name != "sub/a.png" {
		t.Errorf("names = %q, %q", jobs[0].Name, jobs[1].Name)
	}
	if want := filepath.Join(out, "sub", "a.webp"); jobs[1].Output != want {
		t.Errorf("output = %q, want %q", jobs[1].Output, want)
	}

	single, err := Discover(filepath.Join(dir, "b.png"), out, imageio.PNG)
	if err != nil || len(single) != 1 || single[0].Output != filepath.Join(out, "b.png") {
		t.Errorf("single file jobs = %+v, %v", single, err)
	}

	if _, err := Discover(filepath.Join(dir, "missing"), out, imageio.PNG); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, filepath.Join(dir, "one.png"), 6, 5, 3, 2)
	writeInput(t, filepath.Join(dir, "two.png"), 8, 8, 4, 4)
	os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0644)
	out := filepath.Join(dir, "out")

	jobs, err := Discover(dir, out, imageio.PNG)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{Target: red, Tolerance: 5, K: 1, Format: imageio.PNG, Workers: 2}
	results := Run(context.Background(), cfg, jobs)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	byName := make(map[string]Result)
	for _, r := range results {
		byName[r.Name] = r
	}

	if r := byName["broken.png"]; r.Success || r.Error == "" {
		t.Errorf("broken.png: %+v, want failure", r)
	}
	two := byName["two.png"]
	if !two.Success {
		t.Fatalf("two.png failed: %s", two.Error)
	}
	if len(two.Blobs) != 1 || two.Blobs[0].Size != 16 {
		t.Errorf("two.png blobs = %+v, want one of size 16", two.Blobs)
	}

	got, err := imageio.Load(two.Output)
	if err != nil {
		t.Fatal(err)
	}
	if c := got.AtXY(0, 0); c != red {
		t.Errorf("recolored pixel = %v, want %v", c, red)
	}
	if c := got.AtXY(7, 7); c != colorutil.White {
		t.Errorf("background pixel = %v, want white", c)
	}

	m := BuildManifest(NewRunID(), cfg, out, results)
	path := filepath.Join(out, "manifest.json")
	if err := WriteManifest(path, m); err != nil {
		t.Fatal(err)
	}
	back := readManifest(t, path)
	if back.RunID == "" || back.Target != "#ff0000" || len(back.Entries) != 3 {
		t.Errorf("manifest = %+v", back)
	}
	for _, e := range back.Entries {
		if e.Name == "one.png" {
			if e.Image != "one.png" || len(e.Blobs) != 1 || e.Blobs[0].Size != 6 || e.Blobs[0].Rank != 1 {
				t.Errorf("one.png entry = %+v", e)
			}
		}
	}
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, filepath.Join(dir, "a.png"), 3, 3, 1, 1)
	jobs, _ := Discover(dir, filepath.Join(dir, "out"), imageio.PNG)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, Config{Target: red, K: 1, Format: imageio.PNG, Workers: 1}, jobs)

	if len(results) != 1 || results[0].Success {
		t.Fatalf("results = %+v, want one failure", results)
	}
	if !strings.Contains(results[0].Error, "canceled") {
		t.Errorf("error = %q, want context canceled", results[0].Error)
	}
	if _, err := os.Stat(jobs[0].Output); !os.IsNotExist(err) {
		t.Error("cancelled job should not write output")
	}
}
