package pointtrack

import (
	"image"
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correnctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correnctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correnctAnswer)
	}
}

func TestSizeClamp(t *testing.T) {
	size := Size{Width: 640, Height: 480}
	cases := []struct {
		in   Point
		want Point
	}{
		{Point{X: 10, Y: 20}, Point{X: 10, Y: 20}},
		{Point{X: -5, Y: 20}, Point{X: 0, Y: 20}},
		{Point{X: 700, Y: 500}, Point{X: 639, Y: 479}},
		{Point{X: 639.5, Y: -0.1}, Point{X: 639, Y: 0}},
	}
	for _, c := range cases {
		got := size.Clamp(c.in)
		if got != c.want {
			t.Errorf("Clamp(%v): expected %v, got %v", c.in, c.want, got)
		}
		if !size.Contains(got) {
			t.Errorf("Clamped point %v should be inside %v", got, size)
		}
	}
}

func TestPointImage(t *testing.T) {
	cases := []struct {
		in   Point
		want image.Point
	}{
		{Point{X: 10.4, Y: 20.6}, image.Point{X: 10, Y: 21}},
		{Point{X: 7.5, Y: -0.5}, image.Point{X: 8, Y: -1}},
		{Point{X: 3, Y: 4}, image.Point{X: 3, Y: 4}},
	}
	for _, c := range cases {
		if got := c.in.Image(); got != c.want {
			t.Errorf("Image(%v): expected %v, got %v", c.in, c.want, got)
		}
	}
}
