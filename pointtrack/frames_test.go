package pointtrack

import (
	"image"
	"image/color"
	"math"
	"testing"
)

const (
	frameWidth  = 128
	frameHeight = 128
	blobSigma   = 5.0
)

var blobCenters = []Point{
	{X: 40, Y: 50},
	{X: 90, Y: 85},
}

// blobImage renders Gaussian blobs shifted by offset on dark background
func blobImage(offset Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, frameWidth, frameHeight))
	for y := 0; y < frameHeight; y++ {
		for x := 0; x < frameWidth; x++ {
			v := 20.0
			for _, c := range blobCenters {
				dx := float64(x) - (c.X + offset.X)
				dy := float64(y) - (c.Y + offset.Y)
				v += 200 * math.Exp(-(dx*dx+dy*dy)/(2*blobSigma*blobSigma))
			}
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(math.Min(v, 255)))})
		}
	}
	return img
}

// blobRGBA is blobImage as delivered by a decoder
func blobRGBA(offset Point) *image.RGBA {
	gray := blobImage(offset)
	rgba := image.NewRGBA(gray.Rect)
	for y := 0; y < frameHeight; y++ {
		for x := 0; x < frameWidth; x++ {
			v := gray.GrayAt(x, y).Y
			rgba.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return rgba
}

// uniformRGBA is featureless frame: nothing can be tracked on it
func uniformRGBA(level uint8) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	for i := 0; i < len(rgba.Pix); i += 4 {
		rgba.Pix[i] = level
		rgba.Pix[i+1] = level
		rgba.Pix[i+2] = level
		rgba.Pix[i+3] = 255
	}
	return rgba
}

// grayOf converts img and releases the result when test ends
func grayOf(t *testing.T, img image.Image) *GrayImage {
	t.Helper()
	gray, err := ToGray(img)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		gray.Close()
	})
	return gray
}

func blobGray(t *testing.T, offset Point) *GrayImage {
	t.Helper()
	return grayOf(t, blobImage(offset))
}
