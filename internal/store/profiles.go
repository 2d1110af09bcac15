package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"counsellor/internal/logging"
)

const profileColumns = `user_id, current_education_level, degree_major, graduation_year, gpa,
	intended_degree, field_of_study, target_intake_year, preferred_countries,
	budget_per_year, funding_plan, ielts_toefl_status, ielts_toefl_score,
	gre_gmat_status, gre_gmat_score, sop_status, created_at, updated_at`

// GetProfile returns the owner's onboarding profile or ErrNotFound.
func (s *Session) GetProfile(ctx context.Context, owner int64) (*Profile, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, owner)

	var p Profile
	var gradYear, intakeYear sql.NullInt64
	var gpa, budget, ielts, gre sql.NullFloat64
	var createdAt, updatedAt string
	err := row.Scan(
		&p.UserID, &p.CurrentEducationLevel, &p.DegreeMajor, &gradYear, &gpa,
		&p.IntendedDegree, &p.FieldOfStudy, &intakeYear, &p.PreferredCountries,
		&budget, &p.FundingPlan, &p.IELTSTOEFLStatus, &ielts,
		&p.GREGMATStatus, &gre, &p.SOPStatus, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", owner, err)
	}

	p.GraduationYear = intPtr(gradYear)
	p.TargetIntakeYear = intPtr(intakeYear)
	p.GPA = floatPtr(gpa)
	p.BudgetPerYear = floatPtr(budget)
	p.IELTSTOEFLScore = floatPtr(ielts)
	p.GREGMATScore = floatPtr(gre)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// UpsertProfile creates the profile or replaces every answer on an existing
// one. created_at is preserved across updates.
func (s *Session) UpsertProfile(ctx context.Context, p *Profile) error {
	ts := now()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_education_level = excluded.current_education_level,
			degree_major = excluded.degree_major,
			graduation_year = excluded.graduation_year,
			gpa = excluded.gpa,
			intended_degree = excluded.intended_degree,
			field_of_study = excluded.field_of_study,
			target_intake_year = excluded.target_intake_year,
			preferred_countries = excluded.preferred_countries,
			budget_per_year = excluded.budget_per_year,
			funding_plan = excluded.funding_plan,
			ielts_toefl_status = excluded.ielts_toefl_status,
			ielts_toefl_score = excluded.ielts_toefl_score,
			gre_gmat_status = excluded.gre_gmat_status,
			gre_gmat_score = excluded.gre_gmat_score,
			sop_status = excluded.sop_status,
			updated_at = excluded.updated_at`,
		p.UserID, p.CurrentEducationLevel, p.DegreeMajor, nullInt(p.GraduationYear), nullFloat(p.GPA),
		p.IntendedDegree, p.FieldOfStudy, nullInt(p.TargetIntakeYear), p.PreferredCountries,
		nullFloat(p.BudgetPerYear), p.FundingPlan, p.IELTSTOEFLStatus, nullFloat(p.IELTSTOEFLScore),
		p.GREGMATStatus, nullFloat(p.GREGMATScore), p.SOPStatus, ts, ts,
	)
	if err != nil {
		logging.StoreError("Failed to upsert profile %d: %v", p.UserID, err)
		return fmt.Errorf("upsert profile %d: %w", p.UserID, err)
	}
	logging.StoreDebug("Profile upserted: user=%d", p.UserID)
	return nil
}
