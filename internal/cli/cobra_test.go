package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBlobFrame(t *testing.T, path string, cx, cy float64) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			v := 20 + 200*math.Exp(-(dx*dx+dy*dy)/50)
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(v))})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
}

func TestTrackCommand(t *testing.T) {
	framesDir := t.TempDir()
	for i, name := range []string{"frame_000.png", "frame_001.png", "frame_002.png"} {
		writeBlobFrame(t, filepath.Join(framesDir, name), 40+float64(i), 50)
	}
	if err := os.WriteFile(filepath.Join(framesDir, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(t.TempDir(), "out")
	overlaysDir := filepath.Join(t.TempDir(), "overlays")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"track", framesDir, "--point", "40,50", "--out", outDir, "--overlays", overlaysDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Track command failed: %v\n%s", err, stderr.String())
	}

	exported := strings.TrimSpace(stdout.String())
	if filepath.Dir(exported) != outDir || !strings.HasPrefix(filepath.Base(exported), "trajectories_") {
		t.Errorf("Unexpected export path '%s'", exported)
	}
	content, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 records, got %d:\n%s", len(lines), string(content))
	}
	for i, line := range lines {
		fields := strings.Split(line, ";")
		if len(fields) != 5 {
			t.Errorf("Expected 5 fields, got '%s'", line)
			continue
		}
		if fields[0] != []string{"0", "1", "2"}[i] || fields[1] != "0" || fields[4] != "0" {
			t.Errorf("Unexpected record '%s'", line)
		}
	}

	overlays, err := os.ReadDir(overlaysDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(overlays) != 3 {
		t.Errorf("Expected 3 overlays, got %d", len(overlays))
	}
}

func TestTrackCommandNothingToTrack(t *testing.T) {
	framesDir := t.TempDir()
	writeBlobFrame(t, filepath.Join(framesDir, "a.png"), 40, 50)
	cmd := NewRootCmd("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"track", framesDir, "--out", t.TempDir()})
	if err := cmd.Execute(); err == nil {
		t.Errorf("Track without seeds must fail")
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	cmd := NewRootCmd("1.2.3")
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout.String()) != "pointtrack 1.2.3" {
		t.Errorf("Unexpected version output '%s'", stdout.String())
	}
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 12.5, 7")
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 12.5 || p.Y != 7 {
		t.Errorf("Unexpected point %v", p)
	}
	for _, bad := range []string{"", "1", "1,2,3", "a,1", "1,b"} {
		if _, err := parsePoint(bad); err == nil {
			t.Errorf("'%s' must be rejected", bad)
		}
	}
}

func TestListFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.PNG", "c.txt", "d.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "e.png"), 0755); err != nil {
		t.Fatal(err)
	}
	paths, err := listFrames(dir)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"a.PNG", "b.jpg", "d.jpeg"}
	if len(paths) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, paths)
	}
	for i := range expected {
		if filepath.Base(paths[i]) != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, paths[i])
		}
	}
	if _, err := listFrames(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("Missing directory must fail")
	}
}

func TestLoadFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	writeBlobFrame(t, path, 40, 50)
	img, err := loadFrame(path)
	if err != nil {
		t.Fatal(err)
	}
	defer img.Close()
	if img.Cols() != 128 || img.Rows() != 128 || img.Channels() != 3 {
		t.Errorf("Expected 128x128 BGR frame, got %dx%d with %d channels", img.Cols(), img.Rows(), img.Channels())
	}

	overlay := filepath.Join(dir, "overlay.png")
	if err := saveOverlay(overlay, img); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(overlay); err != nil {
		t.Errorf("Overlay should be written: %v", err)
	}

	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadFrame(broken); err == nil {
		t.Error("Undecodable frame must fail")
	}
}
