package models

// Grade is a discrete letter grade on a 12-step ordered scale, A+ best.
type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeDPlus  Grade = "D+"
	GradeD      Grade = "D"
	GradeDMinus Grade = "D-"
)

// GradeScale lists all grades from worst to best. Index in this slice is
// the grade's rank; the total ordering of grades is defined by it.
var GradeScale = []Grade{
	GradeDMinus, GradeD, GradeDPlus,
	GradeCMinus, GradeC, GradeCPlus,
	GradeBMinus, GradeB, GradeBPlus,
	GradeAMinus, GradeA, GradeAPlus,
}

// Rank returns the grade's position on the scale, 0 for D- up to 11 for A+.
// Unknown grades rank lowest.
func (g Grade) Rank() int {
	for i, s := range GradeScale {
		if s == g {
			return i
		}
	}
	return 0
}

// AtLeast reports whether g is equal to or better than other.
func (g Grade) AtLeast(other Grade) bool {
	return g.Rank() >= other.Rank()
}
