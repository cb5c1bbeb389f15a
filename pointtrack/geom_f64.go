package pointtrack

import (
	"image"
	"math"
)

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by k
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Image returns nearest integer pixel position
func (p Point) Image() image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Size is an image extent in pixels
type Size struct {
	Width  int
	Height int
}

// Clamp pins point into [0, width-1] x [0, height-1]
func (s Size) Clamp(p Point) Point {
	return Point{
		X: clampFloat64(p.X, 0, float64(s.Width-1)),
		Y: clampFloat64(p.Y, 0, float64(s.Height-1)),
	}
}

// Contains reports whether point lies inside [0, width-1] x [0, height-1]
func (s Size) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(s.Width-1) && p.Y <= float64(s.Height-1)
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(float64(p1.X-p2.X), 2) + math.Pow(float64(p1.Y-p2.Y), 2))
}
