package pointtrack

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"gocv.io/x/gocv"
)

// DrawTarget is surface overlay markers are painted onto
type DrawTarget interface {
	// DrawCircle strokes circle outline
	DrawCircle(center Point, radius float64, c color.Color)
	// FillCircle paints filled disc
	FillCircle(center Point, radius float64, c color.Color)
	// DrawText writes label with baseline starting at pos
	DrawText(pos Point, text string, c color.Color)
}

const (
	markerRadius       = 7.5
	markerDotRadius    = 2.0
	activeRingRadius   = 11.0
	trailDotRadius     = 1.5
	labelOffsetX       = 9.0
	labelOffsetY       = -9.0
	minTrailAlpha      = 40
	maxTrailAlpha      = 220
	activeRingGrayness = 255
)

// overlayState is copy of everything needed to paint one frame, taken under lock
type overlayState struct {
	current      QueryResult
	history      []QueryResult
	activeID     int
	validColor   color.RGBA
	invalidColor color.RGBA
}

// RenderOverlay draws trail, markers, labels and active point ring of frame onto target
func (t *LucasKanadeTracker) RenderOverlay(frame int, target DrawTarget) {
	if target == nil {
		return
	}
	t.mu.Lock()
	state := overlayState{
		current:      t.store.Query(frame),
		history:      History(t.store, frame, t.params.HistorySize),
		activeID:     t.activeID,
		validColor:   t.params.ValidColor,
		invalidColor: t.params.InvalidColor,
	}
	t.mu.Unlock()
	state.paint(target)
}

func (state overlayState) paint(target DrawTarget) {
	// Oldest first so recent dots are painted on top
	for k := len(state.history) - 1; k >= 0; k-- {
		alpha := trailAlpha(k, len(state.history))
		set := state.history[k]
		for id := range set.Statuses {
			pos, ok := set.TruePosition(id)
			if !ok {
				continue
			}
			c := state.colorOf(set.Statuses[id])
			c.A = alpha
			target.FillCircle(pos, trailDotRadius, c)
		}
	}
	for id := range state.current.Statuses {
		pos, ok := state.current.TruePosition(id)
		if !ok {
			continue
		}
		c := state.colorOf(state.current.Statuses[id])
		target.DrawCircle(pos, markerRadius, c)
		target.FillCircle(pos, markerDotRadius, c)
		target.DrawText(Point{X: pos.X + labelOffsetX, Y: pos.Y + labelOffsetY}, strconv.Itoa(id), c)
		if id == state.activeID {
			target.DrawCircle(pos, activeRingRadius, color.RGBA{R: activeRingGrayness, G: activeRingGrayness, B: activeRingGrayness, A: 255})
		}
	}
}

func (state overlayState) colorOf(status ExistenceStatus) color.RGBA {
	if status == StatusValid {
		return state.validColor
	}
	return state.invalidColor
}

// trailAlpha fades linearly from maxTrailAlpha for the nearest frame (k = 0) to minTrailAlpha for the oldest
func trailAlpha(k, n int) uint8 {
	if n <= 1 {
		return maxTrailAlpha
	}
	span := float64(maxTrailAlpha - minTrailAlpha)
	return uint8(maxTrailAlpha - math.Round(span*float64(k)/float64(n-1)))
}

// MatCanvas is DrawTarget painting onto BGR Mat. Colors follow gocv convention: RGB channels
// are not premultiplied and alpha below 255 blends the shape with what lies under it.
type MatCanvas struct {
	Mat gocv.Mat
}

const (
	labelFont      = gocv.FontHersheySimplex
	labelScale     = 0.4
	labelThickness = 1
)

// NewMatCanvas wraps mat, which stays owned by caller
func NewMatCanvas(mat gocv.Mat) *MatCanvas {
	return &MatCanvas{Mat: mat}
}

func (canvas *MatCanvas) DrawCircle(center Point, radius float64, c color.Color) {
	r := int(math.Round(radius))
	canvas.paint(circleBounds(center, r), c, func(dst *gocv.Mat, origin image.Point, col color.RGBA) {
		gocv.Circle(dst, center.Image().Sub(origin), r, col, 1)
	})
}

func (canvas *MatCanvas) FillCircle(center Point, radius float64, c color.Color) {
	r := int(math.Round(radius))
	canvas.paint(circleBounds(center, r), c, func(dst *gocv.Mat, origin image.Point, col color.RGBA) {
		gocv.Circle(dst, center.Image().Sub(origin), r, col, -1)
	})
}

func (canvas *MatCanvas) DrawText(pos Point, text string, c color.Color) {
	org := pos.Image()
	extent := gocv.GetTextSize(text, labelFont, labelScale, labelThickness)
	bounds := image.Rect(org.X-1, org.Y-extent.Y-2, org.X+extent.X+2, org.Y+extent.Y/2+2)
	canvas.paint(bounds, c, func(dst *gocv.Mat, origin image.Point, col color.RGBA) {
		gocv.PutText(dst, text, org.Sub(origin), labelFont, labelScale, col, labelThickness)
	})
}

// paint runs draw with opaque color: straight onto the canvas, or for translucent colors onto a copy
// of bounds which is then blended back. draw gets the canvas position of its target's top-left corner.
func (canvas *MatCanvas) paint(bounds image.Rectangle, c color.Color, draw func(dst *gocv.Mat, origin image.Point, col color.RGBA)) {
	col := straightRGBA(c)
	if col.A == 0 {
		return
	}
	alpha := float64(col.A) / 255
	col.A = 255
	if alpha == 1 {
		draw(&canvas.Mat, image.Point{}, col)
		return
	}
	bounds = bounds.Intersect(image.Rect(0, 0, canvas.Mat.Cols(), canvas.Mat.Rows()))
	if bounds.Empty() {
		return
	}
	region := canvas.Mat.Region(bounds)
	defer region.Close()
	layer := region.Clone()
	defer layer.Close()
	draw(&layer, bounds.Min, col)
	gocv.AddWeighted(layer, alpha, region, 1-alpha, 0, &region)
}

func circleBounds(center Point, radius int) image.Rectangle {
	at := center.Image()
	return image.Rect(at.X-radius-1, at.Y-radius-1, at.X+radius+2, at.Y+radius+2)
}

// straightRGBA returns c with non-premultiplied channels. color.RGBA is taken as is, like gocv does.
func straightRGBA(c color.Color) color.RGBA {
	if rgba, ok := c.(color.RGBA); ok {
		return rgba
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}
