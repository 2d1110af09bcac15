package store

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested row does not exist for the owner.
var ErrNotFound = errors.New("not found")

// Profile is the onboarding record for one owner. Optional numeric answers
// are nil when the student left them blank.
type Profile struct {
	UserID                int64     `json:"user_id"`
	CurrentEducationLevel string    `json:"current_education_level"`
	DegreeMajor           string    `json:"degree_major"`
	GraduationYear        *int      `json:"graduation_year"`
	GPA                   *float64  `json:"gpa"`
	IntendedDegree        string    `json:"intended_degree"`
	FieldOfStudy          string    `json:"field_of_study"`
	TargetIntakeYear      *int      `json:"target_intake_year"`
	PreferredCountries    string    `json:"preferred_countries"`
	BudgetPerYear         *float64  `json:"budget_per_year"`
	FundingPlan           string    `json:"funding_plan"`
	IELTSTOEFLStatus      string    `json:"ielts_toefl_status"`
	IELTSTOEFLScore       *float64  `json:"ielts_toefl_score"`
	GREGMATStatus         string    `json:"gre_gmat_status"`
	GREGMATScore          *float64  `json:"gre_gmat_score"`
	SOPStatus             string    `json:"sop_status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Countries splits PreferredCountries on commas, dropping blanks.
func (p *Profile) Countries() []string {
	var out []string
	for _, c := range strings.Split(p.PreferredCountries, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// University is one catalog entry. AcceptanceRate is a fraction in [0,1].
type University struct {
	ID             int64   `json:"id" yaml:"-"`
	Name           string  `json:"name" yaml:"name"`
	Country        string  `json:"country" yaml:"country"`
	DegreeType     string  `json:"degree_type" yaml:"degree_type"`
	FieldOfStudy   string  `json:"field_of_study" yaml:"field_of_study"`
	TuitionFee     float64 `json:"tuition_fee" yaml:"tuition_fee"`
	AcceptanceRate float64 `json:"acceptance_rate" yaml:"acceptance_rate"`
	Ranking        int     `json:"ranking" yaml:"ranking"`
	Description    string  `json:"description" yaml:"description"`
}

// Todo is a user-facing task, optionally tied to a university.
type Todo struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	UniversityID *int64     `json:"university_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Document is one checklist item of an application to a locked university.
type Document struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	UniversityID int64     `json:"university_id"`
	Name         string    `json:"name"`
	Completed    bool      `json:"is_completed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewTodo is the input to CreateTodo.
type NewTodo struct {
	Title        string
	Description  string
	UniversityID *int64
}

const timeLayout = time.RFC3339Nano

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
