package pointtrack

import (
	"image"
	"image/color"
	"testing"
)

func squareGray(t *testing.T) *GrayImage {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 20; y < 44; y++ {
		for x := 20; x < 44; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return grayOf(t, img)
}

func TestGoodFeaturesToTrackSquare(t *testing.T) {
	params := DefaultFeatureParams()
	corners := GoodFeaturesToTrack(squareGray(t), params)
	if len(corners) < 4 {
		t.Fatalf("Expected at least 4 corners, got %d: %v", len(corners), corners)
	}
	expected := []Point{{X: 20, Y: 20}, {X: 43, Y: 20}, {X: 20, Y: 43}, {X: 43, Y: 43}}
	for _, want := range expected {
		found := false
		for _, c := range corners {
			if euclideanDistance(c, want) <= 3 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("No corner detected near %v, got %v", want, corners)
		}
	}
	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			if euclideanDistance(corners[i], corners[j]) < params.MinDistance {
				t.Errorf("Corners %v and %v violate min distance", corners[i], corners[j])
			}
		}
	}
}

func TestGoodFeaturesToTrackLimits(t *testing.T) {
	params := DefaultFeatureParams()
	params.MaxCorners = 2
	if corners := GoodFeaturesToTrack(squareGray(t), params); len(corners) != 2 {
		t.Errorf("Expected exactly 2 corners, got %d", len(corners))
	}
	flat := grayOf(t, image.NewGray(image.Rect(0, 0, 32, 32)))
	if corners := GoodFeaturesToTrack(flat, DefaultFeatureParams()); len(corners) != 0 {
		t.Errorf("Flat image has no corners, got %v", corners)
	}
	if corners := GoodFeaturesToTrack(nil, DefaultFeatureParams()); len(corners) != 0 {
		t.Errorf("Missing image has no corners, got %v", corners)
	}
}

func TestCornerSubPixBlob(t *testing.T) {
	img := blobGray(t, Point{})
	start := []Point{{X: 42, Y: 51.5}, {X: 88.5, Y: 83}}
	refined := CornerSubPix(img, start, 10, DefaultSubPixCriteria())
	for i, want := range blobCenters {
		if d := euclideanDistance(refined[i], want); d > 0.2 {
			t.Errorf("Point %d: expected near %v, got %v (error %f)", i, want, refined[i], d)
		}
	}
}

func TestCornerSubPixFlat(t *testing.T) {
	img := grayOf(t, image.NewGray(image.Rect(0, 0, 32, 32)))
	start := []Point{{X: 10.25, Y: 12.75}}
	refined := CornerSubPix(img, start, 5, DefaultSubPixCriteria())
	if refined[0] != start[0] {
		t.Errorf("Flat image should keep position, got %v", refined[0])
	}
}

func TestCornerSubPixTinyFrame(t *testing.T) {
	img := grayOf(t, image.NewGray(image.Rect(0, 0, 6, 6)))
	start := []Point{{X: 2.3, Y: 3.1}}
	refined := CornerSubPix(img, start, 10, DefaultSubPixCriteria())
	if refined[0] != start[0] {
		t.Errorf("No window fits 6x6 frame, position should be kept, got %v", refined[0])
	}
	start[0] = Point{X: 1, Y: 1}
	if refined[0] == start[0] {
		t.Error("Result must not alias input")
	}
}
