package scoring

// Grade is the letter rank assigned to a completed session.
type Grade int

const (
	GradeSS Grade = iota
	GradeS
	GradeA
	GradeB
	GradeC
	GradeD
)

// String returns the display name of the grade.
func (g Grade) String() string {
	switch g {
	case GradeSS:
		return "SS"
	case GradeS:
		return "S"
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	default:
		return "D"
	}
}

// ParseGrade maps a stored grade name back to its value. Unknown names
// fall through to D.
func ParseGrade(s string) Grade {
	switch s {
	case "SS":
		return GradeSS
	case "S":
		return GradeS
	case "A":
		return GradeA
	case "B":
		return GradeB
	case "C":
		return GradeC
	default:
		return GradeD
	}
}

// Grade assigns the letter rank from the hit counters. Conditions are
// checked from best to worst; the first that holds wins.
func (c Counts) Grade() Grade {
	total := c.Total()
	if total == 0 {
		return GradeD
	}

	perfectRatio := float64(c.Perfect) / float64(total)
	goodRatio := float64(c.Good) / float64(total)

	switch {
	case c.Perfect == total:
		return GradeSS
	case perfectRatio > 0.9 && goodRatio < 0.01 && c.Miss == 0:
		return GradeS
	case (perfectRatio > 0.8 && c.Miss == 0) || perfectRatio > 0.9:
		return GradeA
	case (perfectRatio > 0.7 && c.Miss == 0) || perfectRatio > 0.8:
		return GradeB
	case perfectRatio > 0.6:
		return GradeC
	default:
		return GradeD
	}
}
