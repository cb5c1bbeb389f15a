package pointtrack

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// LKParams configures pyramidal Lucas-Kanade correspondence
type LKParams struct {
	// Side of square search window, odd. Default 31
	WinSize int
	// Max pyramid level (0 means single level). Default 10
	MaxLevel int
	// Iteration stop criterion per level
	Criteria TermCriteria
	// Points whose normalized minimal eigenvalue of spatial gradient matrix is below threshold are lost. Default 1e-3
	MinEigThreshold float64
}

// DefaultLKParams returns window 31, 10 levels, 20 iterations or eps=0.03
func DefaultLKParams() LKParams {
	return LKParams{
		WinSize:         31,
		MaxLevel:        10,
		Criteria:        DefaultTermCriteria(),
		MinEigThreshold: 1e-3,
	}
}

// CalcOpticalFlowPyrLK finds positions of prevPts in next frame. When guesses is not nil it holds
// initial estimates of the new positions (same length as prevPts), otherwise search starts at prevPts.
// Returned status[i] is false when point i could not be tracked; its position is then meaningless.
// Both frames must have the same size.
func CalcOpticalFlowPyrLK(prev, next *GrayImage, prevPts, guesses []Point, params LKParams) ([]Point, []bool) {
	if guesses != nil {
		assertSameLength("optical flow guesses", len(prevPts), len(guesses))
	}
	if len(prevPts) == 0 {
		return []Point{}, []bool{}
	}
	if prev.Size() != next.Size() {
		panic(ContractViolation{What: fmt.Sprintf("optical flow frames differ in size: %v and %v", prev.Size(), next.Size())})
	}
	if guesses == nil {
		guesses = prevPts
	}

	prevMat := pointsToMat(prevPts)
	defer prevMat.Close()
	// Search starts from whatever nextMat holds
	nextMat := pointsToMat(guesses)
	defer nextMat.Close()
	status := gocv.NewMat()
	defer status.Close()
	errMat := gocv.NewMat()
	defer errMat.Close()

	win := maxInt(params.WinSize, minWindowSize)
	gocv.CalcOpticalFlowPyrLKWithParams(
		prev.mat, next.mat, prevMat, nextMat, &status, &errMat,
		image.Pt(win, win), maxInt(params.MaxLevel, 0), params.Criteria.cv(),
		gocv.OptflowUseInitialFlow, params.MinEigThreshold,
	)

	nextPts := matToPoints(nextMat)
	tracked := make([]bool, len(prevPts))
	for i := range tracked {
		tracked[i] = status.GetUCharAt(i, 0) == 1
	}
	return nextPts, tracked
}
