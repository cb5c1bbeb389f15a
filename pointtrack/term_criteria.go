package pointtrack

import (
	"gocv.io/x/gocv"
)

// TermType is bit set selecting which termination conditions are active
type TermType uint8

const (
	// TermCount stops after MaxCount iterations
	TermCount TermType = 1 << iota
	// TermEps stops once an iteration moves the estimate less than Epsilon
	TermEps
)

// TermCriteria is termination criterion for iterative searches: whichever active condition triggers first wins
type TermCriteria struct {
	Type     TermType
	MaxCount int
	Epsilon  float64
}

// DefaultTermCriteria is 20 iterations or 0.03 px improvement
func DefaultTermCriteria() TermCriteria {
	return TermCriteria{
		Type:     TermCount | TermEps,
		MaxCount: 20,
		Epsilon:  0.03,
	}
}

// cv converts criteria for OpenCV solvers
func (tc TermCriteria) cv() gocv.TermCriteria {
	typ, maxCount, epsilon := tc.resolved()
	return gocv.NewTermCriteria(typ, maxCount, epsilon)
}

// resolved maps criteria onto OpenCV terms. Criteria with no active condition run 30 iterations or 0.01 px.
func (tc TermCriteria) resolved() (gocv.TermCriteriaType, int, float64) {
	count := tc.Type&TermCount != 0
	eps := tc.Type&TermEps != 0
	switch {
	case count && eps:
		return gocv.Count | gocv.EPS, tc.MaxCount, tc.Epsilon
	case count:
		return gocv.Count, tc.MaxCount, tc.Epsilon
	case eps:
		return gocv.EPS, tc.MaxCount, tc.Epsilon
	default:
		return gocv.Count | gocv.EPS, 30, 0.01
	}
}
