package pointtrack

import (
	"gocv.io/x/gocv"
)

// pointsToMat packs points into N x 2 float32 Mat. Caller closes it.
func pointsToMat(points []Point) gocv.Mat {
	mat := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	for i, p := range points {
		mat.SetFloatAt(i, 0, float32(p.X))
		mat.SetFloatAt(i, 1, float32(p.Y))
	}
	return mat
}

// matToPoints reads points from N x 1 two-channel or N x 2 single channel float32 Mat
func matToPoints(mat gocv.Mat) []Point {
	points := make([]Point, mat.Rows())
	for i := range points {
		if mat.Channels() == 2 {
			vec := mat.GetVecfAt(i, 0)
			points[i] = Point{X: float64(vec[0]), Y: float64(vec[1])}
			continue
		}
		points[i] = Point{X: float64(mat.GetFloatAt(i, 0)), Y: float64(mat.GetFloatAt(i, 1))}
	}
	return points
}

// sameAsFloat32 reports whether q is p stored with float32 precision
func sameAsFloat32(p, q Point) bool {
	return float64(float32(p.X)) == q.X && float64(float32(p.Y)) == q.Y
}
