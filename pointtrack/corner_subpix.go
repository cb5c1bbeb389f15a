package pointtrack

import (
	"image"

	"gocv.io/x/gocv"
)

// subPixMargin is the extra room OpenCV requires around the refinement window inside the frame
const subPixMargin = 5

// CornerSubPix refines corner locations to sub-pixel accuracy.
// halfWin is half of the search window side: the window is (2*halfWin+1) x (2*halfWin+1).
// It is shrunk to fit small frames; when no window fits corners are returned unchanged.
// A point whose refinement wanders further than halfWin from its start keeps its input position.
func CornerSubPix(img *GrayImage, corners []Point, halfWin int, criteria TermCriteria) []Point {
	refined := make([]Point, len(corners))
	copy(refined, corners)
	halfWin = minInt(halfWin, (minInt(img.Width(), img.Height())-subPixMargin)/2)
	if len(corners) == 0 || halfWin < 1 {
		return refined
	}

	mat := pointsToMat(corners)
	defer mat.Close()
	gocv.CornerSubPix(img.mat, &mat, image.Pt(halfWin, halfWin), image.Pt(-1, -1), criteria.cv())
	for i, p := range matToPoints(mat) {
		// Untouched corners keep full precision
		if !sameAsFloat32(corners[i], p) {
			refined[i] = p
		}
	}
	return refined
}
