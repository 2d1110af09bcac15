package catalog

import "counsellor/internal/store"

// Chance labels returned by Chance.
const (
	ChanceHigh   = "High"
	ChanceMedium = "Medium"
	ChanceLow    = "Low"
)

// Chance estimates admission odds from the student's GPA and the
// university's acceptance rate. A nil profile yields Medium.
func Chance(u store.University, p *store.Profile) string {
	if p == nil {
		return ChanceMedium
	}

	score := 0
	if p.GPA != nil {
		switch gpa := *p.GPA; {
		case gpa >= 3.8:
			score += 3
		case gpa >= 3.5:
			score += 2
		case gpa >= 3.0:
			score++
		}
	}

	switch rate := u.AcceptanceRate; {
	case rate > 0.7:
		score += 2
	case rate > 0.4:
		score++
	case rate < 0.2:
		score -= 2
	}

	switch {
	case score >= 4:
		return ChanceHigh
	case score >= 2:
		return ChanceMedium
	default:
		return ChanceLow
	}
}
