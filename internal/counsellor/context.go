package counsellor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"counsellor/internal/catalog"
	"counsellor/internal/config"
	"counsellor/internal/logging"
	"counsellor/internal/store"
)

// Digest is the bounded textual view of a student's state handed to the
// reasoning provider.
type Digest struct {
	Profile    string
	Stage      Stage
	Selections string
	Candidates string
	// CandidateCount is the number of rows in Candidates.
	CandidateCount int
}

// ContextBuilder assembles a Digest from the store and the catalog.
type ContextBuilder struct {
	catalog *catalog.Catalog
	cfg     config.ContextConfig
}

// NewContextBuilder creates a builder. Zero limits fall back to 20/10/10.
func NewContextBuilder(cat *catalog.Catalog, cfg config.ContextConfig) *ContextBuilder {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 20
	}
	if cfg.BackfillThreshold <= 0 {
		cfg.BackfillThreshold = 10
	}
	if cfg.BackfillLimit <= 0 {
		cfg.BackfillLimit = 10
	}
	return &ContextBuilder{catalog: cat, cfg: cfg}
}

// Build reads the selections and a ranked candidate slice for the profile's
// preferred countries, backfilling from the whole catalog when the filtered
// slice is short.
func (b *ContextBuilder) Build(ctx context.Context, sess *store.Session, p *store.Profile, stage Stage, shortlisted, locked []int64) (*Digest, error) {
	shortNames, err := b.catalog.Names(ctx, sess, shortlisted)
	if err != nil {
		return nil, fmt.Errorf("resolve shortlist names: %w", err)
	}
	lockNames, err := b.catalog.Names(ctx, sess, locked)
	if err != nil {
		return nil, fmt.Errorf("resolve locked names: %w", err)
	}

	var countries []string
	if p != nil {
		countries = p.Countries()
	}
	candidates, err := b.catalog.Candidates(ctx, sess, countries, b.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) < b.cfg.BackfillThreshold {
		extra, err := b.catalog.Backfill(ctx, sess, candidates, b.cfg.BackfillLimit)
		if err != nil {
			return nil, fmt.Errorf("backfill candidates: %w", err)
		}
		logging.EngineDebug("Backfilled %d candidates after %d filtered", len(extra), len(candidates))
		candidates = append(candidates, extra...)
	}

	return &Digest{
		Profile:        profileDigest(p),
		Stage:          stage,
		Selections:     fmt.Sprintf("Shortlisted: %s\nLocked: %s", strings.Join(shortNames, ", "), strings.Join(lockNames, ", ")),
		Candidates:     candidateRows(candidates),
		CandidateCount: len(candidates),
	}, nil
}

func profileDigest(p *store.Profile) string {
	if p == nil {
		p = &store.Profile{}
	}
	exams := strings.TrimSpace(fmt.Sprintf("IELTS/TOEFL %s %s, GRE/GMAT %s %s",
		p.IELTSTOEFLStatus, optFloat(p.IELTSTOEFLScore), p.GREGMATStatus, optFloat(p.GREGMATScore)))

	lines := []string{
		fmt.Sprintf("GPA: %s, Degree: %s, Field: %s, Budget: $%s, Exams: %s",
			optFloat(p.GPA), p.IntendedDegree, p.FieldOfStudy, optMoney(p.BudgetPerYear), exams),
		fmt.Sprintf("Education: %s in %s (graduating %s)", p.CurrentEducationLevel, p.DegreeMajor, optInt(p.GraduationYear)),
		fmt.Sprintf("Target intake: %s, Countries: %s, Funding: %s, SOP: %s",
			optInt(p.TargetIntakeYear), p.PreferredCountries, p.FundingPlan, p.SOPStatus),
	}
	return strings.Join(lines, "\n")
}

// candidateRows renders one line per university. Ids appear here so the
// provider can reference them in action payloads.
func candidateRows(unis []store.University) string {
	rows := make([]string, 0, len(unis))
	for _, u := range unis {
		rows = append(rows, fmt.Sprintf("ID: %d | %s | %s | Cost: $%s/yr | Acceptance: %s%% | Ranking: %s",
			u.ID, u.Name, u.Country, money(u.TuitionFee), AcceptancePercent(u.AcceptanceRate), RankingLabel(u.Ranking)))
	}
	return strings.Join(rows, "\n")
}

// AcceptancePercent renders a selectivity fraction as a percentage with at
// most one decimal. Values above 1 are taken as already being percentages.
func AcceptancePercent(rate float64) string {
	if rate <= 1 {
		rate *= 100
	}
	return strconv.FormatFloat(math.Round(rate*10)/10, 'f', -1, 64)
}

// RankingLabel renders 0 as "N/A" and anything else as "#n".
func RankingLabel(ranking int) string {
	if ranking <= 0 {
		return "N/A"
	}
	return "#" + strconv.Itoa(ranking)
}

func money(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func optMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return money(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
