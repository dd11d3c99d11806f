package matcher

import "github.com/shopspring/decimal"

// GradePair classifies a realized pair by its value and date deltas. The
// bounds are inclusive and evaluated narrowest first; both the value and
// the date bound must hold for a grade to apply, and a pair outside every
// bound is graded NeedsReview rather than rejected.
//
// Pure function of its inputs; smaller deltas never produce a worse grade.
func (e *Engine) GradePair(valueDifference decimal.Decimal, dateDifference int) Grade {
	bounds := []struct {
		bound GradeBound
		grade Grade
	}{
		{e.config.PerfectBound, GradePerfect},
		{e.config.GoodBound, GradeGood},
		{e.config.FairBound, GradeFair},
	}

	for _, b := range bounds {
		if valueDifference.LessThanOrEqual(b.bound.MaxValueDifference) &&
			dateDifference <= b.bound.MaxDateDifference {
			return b.grade
		}
	}

	return GradeNeedsReview
}
