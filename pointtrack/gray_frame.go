package pointtrack

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// GrayImage is single channel 8 bit frame held in OpenCV Mat.
// It owns the Mat: Close releases it.
type GrayImage struct {
	mat gocv.Mat
}

// NewGrayImageFromMat converts BGR, BGRA or single channel src into new GrayImage. src stays owned by caller.
func NewGrayImageFromMat(src gocv.Mat) (*GrayImage, error) {
	if src.Empty() {
		return nil, errors.New("empty frame")
	}
	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.ConvertTo(&gray, gocv.MatTypeCV8U)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return nil, errors.Errorf("unsupported number of channels %d", src.Channels())
	}
	return &GrayImage{mat: gray}, nil
}

// ToGray converts any image to grayscale using 0.299R + 0.587G + 0.114B weights
func ToGray(src image.Image) (*GrayImage, error) {
	if gray, ok := src.(*image.Gray); ok && gray.Rect.Min == (image.Point{}) && gray.Stride == gray.Rect.Dx() {
		shared, err := gocv.ImageGrayToMatGray(gray)
		if err != nil {
			return nil, errors.Wrap(err, "Can't wrap gray image")
		}
		defer shared.Close()
		// shared uses pixels of src which host may reuse for the next frame
		return &GrayImage{mat: shared.Clone()}, nil
	}
	bgr, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, errors.Wrap(err, "Can't convert image to Mat")
	}
	defer bgr.Close()
	return NewGrayImageFromMat(bgr)
}

// Width returns number of columns
func (img *GrayImage) Width() int {
	return img.mat.Cols()
}

// Height returns number of rows
func (img *GrayImage) Height() int {
	return img.mat.Rows()
}

// Size returns image extent
func (img *GrayImage) Size() Size {
	return Size{Width: img.Width(), Height: img.Height()}
}

// At returns intensity at integer pixel, replicating border pixels outside the image
func (img *GrayImage) At(x, y int) uint8 {
	return img.mat.GetUCharAt(clampInt(y, 0, img.Height()-1), clampInt(x, 0, img.Width()-1))
}

// Close releases underlying Mat
func (img *GrayImage) Close() error {
	return img.mat.Close()
}

// FrameCache holds current and previous grayscale frames with their frame numbers.
// It owns cached frames and closes them once they are dropped.
type FrameCache struct {
	prev      *GrayImage
	prevFrame int
	cur       *GrayImage
	curFrame  int
}

// NewFrameCache creates empty cache
func NewFrameCache() *FrameCache {
	return &FrameCache{
		prevFrame: -1,
		curFrame:  -1,
	}
}

// Push stores gray as current frame. Pushing the frame number already current refreshes it
// in place and keeps previous frame untouched.
func (cache *FrameCache) Push(frame int, gray *GrayImage) {
	if cache.cur != nil && frame == cache.curFrame {
		closeGray(cache.cur)
		cache.cur = gray
		return
	}
	closeGray(cache.prev)
	cache.prev, cache.prevFrame = cache.cur, cache.curFrame
	cache.cur, cache.curFrame = gray, frame
}

// Current returns current gray frame, nil when nothing has been pushed
func (cache *FrameCache) Current() (*GrayImage, int) {
	return cache.cur, cache.curFrame
}

// Previous returns previous gray frame, nil when there is none
func (cache *FrameCache) Previous() (*GrayImage, int) {
	return cache.prev, cache.prevFrame
}

// Ready reports whether any frame has been pushed
func (cache *FrameCache) Ready() bool {
	return cache.cur != nil
}

// Consecutive reports whether cached frames are adjacent (previous == current-1) and equally sized
func (cache *FrameCache) Consecutive() bool {
	if cache.prev == nil || cache.cur == nil {
		return false
	}
	return cache.prevFrame == cache.curFrame-1 && cache.prev.Size() == cache.cur.Size()
}

// Reset closes and drops cached frames
func (cache *FrameCache) Reset() {
	closeGray(cache.prev)
	closeGray(cache.cur)
	cache.prev, cache.prevFrame = nil, -1
	cache.cur, cache.curFrame = nil, -1
}

func closeGray(img *GrayImage) {
	if img != nil {
		img.Close()
	}
}
