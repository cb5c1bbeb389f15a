package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/LdDl/pointtrack-go/pointtrack"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// listFrames returns image files of dir in lexical order; the order defines frame numbers
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read frames directory '%s'", dir)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !frameExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func loadFrame(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), errors.Errorf("Can't decode frame '%s'", path)
	}
	return img, nil
}

func saveOverlay(path string, img gocv.Mat) error {
	if !gocv.IMWrite(path, img) {
		return errors.Errorf("Can't write overlay '%s'", path)
	}
	return nil
}

// parsePoint parses "x,y"
func parsePoint(s string) (pointtrack.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return pointtrack.Point{}, errors.Errorf("point '%s' must look like x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return pointtrack.Point{}, errors.Wrapf(err, "bad x in '%s'", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return pointtrack.Point{}, errors.Wrapf(err, "bad y in '%s'", s)
	}
	return pointtrack.NewPoint(x, y), nil
}
