package pointtrack

import (
	"gocv.io/x/gocv"
)

// FeatureParams configures GoodFeaturesToTrack
type FeatureParams struct {
	// Max number of corners returned, no limit when not positive. Default 500
	MaxCorners int
	// Corners weaker than QualityLevel * strongest response are dropped. Default 0.01
	QualityLevel float64
	// Minimal euclidean distance between returned corners. Default 10
	MinDistance float64
	// Half window of sub-pixel refinement applied to detected corners. Default 10
	SubPixHalfWin int
}

// DefaultFeatureParams returns 500 corners, quality 0.01, min distance 10, sub-pixel half window 10
func DefaultFeatureParams() FeatureParams {
	return FeatureParams{
		MaxCorners:    500,
		QualityLevel:  0.01,
		MinDistance:   10,
		SubPixHalfWin: 10,
	}
}

// DefaultSubPixCriteria is 100 iterations or 0.001 px improvement
func DefaultSubPixCriteria() TermCriteria {
	return TermCriteria{
		Type:     TermCount | TermEps,
		MaxCount: 100,
		Epsilon:  0.001,
	}
}

// GoodFeaturesToTrack finds strongest Shi-Tomasi corners (minimal eigenvalue of gradient covariance
// over 3x3 blocks), strongest first
func GoodFeaturesToTrack(img *GrayImage, params FeatureParams) []Point {
	if img == nil || img.Width() < 3 || img.Height() < 3 || params.QualityLevel <= 0 {
		return []Point{}
	}
	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(img.mat, &corners, maxInt(params.MaxCorners, 0), params.QualityLevel, maxFloat64(params.MinDistance, 0))
	if corners.Empty() {
		return []Point{}
	}
	return matToPoints(corners)
}
