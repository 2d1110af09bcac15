// Package counsellor is the decision engine behind the AI counsellor chat.
// One call to Engine.Respond classifies the student's stage, builds a bounded
// context, consults the reasoning provider once, interprets its JSON reply,
// applies the resulting actions and projects the updated state.
package counsellor

// Stage is the derived workflow phase. It is never stored.
type Stage string

const (
	StageDiscovery    Stage = "DISCOVERY"
	StageFinalization Stage = "FINALIZATION"
	StagePreparation  Stage = "PREPARATION"
)

// Classify derives the stage from the current selections. Any lock means
// PREPARATION regardless of the shortlist.
func Classify(shortlisted, locked []int64) Stage {
	switch {
	case len(locked) > 0:
		return StagePreparation
	case len(shortlisted) > 0:
		return StageFinalization
	default:
		return StageDiscovery
	}
}

// guidance is the per-stage hint given to the reasoning provider.
func (s Stage) guidance() string {
	switch s {
	case StagePreparation:
		return "Focus on the locked universities. Create concrete tasks for SOP, recommendation letters and tests."
	case StageFinalization:
		return "Help the student compare the shortlist and choose which universities to lock."
	default:
		return "Find the best fit. Suggest three to five universities worth shortlisting."
	}
}

// DashboardStage is the numbered progress indicator shown on the dashboard.
type DashboardStage struct {
	Stage int    `json:"stage"`
	Name  string `json:"stage_name"`
}

// Dashboard maps a stage to the dashboard indicator. Students without a
// profile are still onboarding.
func Dashboard(hasProfile bool, s Stage) DashboardStage {
	if !hasProfile {
		return DashboardStage{Stage: 0, Name: "Onboarding"}
	}
	switch s {
	case StagePreparation:
		return DashboardStage{Stage: 4, Name: "Preparing Applications"}
	case StageFinalization:
		return DashboardStage{Stage: 3, Name: "Finalizing Universities"}
	default:
		return DashboardStage{Stage: 2, Name: "Discovering Universities"}
	}
}
