package counsellor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		shortlisted []int64
		locked      []int64
		want        Stage
	}{
		{"nothing", nil, nil, StageDiscovery},
		{"empty slices", []int64{}, []int64{}, StageDiscovery},
		{"shortlist only", []int64{1, 2}, nil, StageFinalization},
		{"lock without shortlist", nil, []int64{3}, StagePreparation},
		{"lock and shortlist", []int64{1, 2, 3}, []int64{3}, StagePreparation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.shortlisted, tt.locked))
		})
	}
}

func TestClassify_AnyLockDominates(t *testing.T) {
	t.Parallel()
	for n := 0; n < 16; n++ {
		shortlist := make([]int64, n)
		for i := range shortlist {
			shortlist[i] = int64(i + 1)
		}
		assert.Equal(t, StagePreparation, Classify(shortlist, []int64{99}), "shortlist size %d", n)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DashboardStage{0, "Onboarding"}, Dashboard(false, StagePreparation))
	assert.Equal(t, DashboardStage{2, "Discovering Universities"}, Dashboard(true, StageDiscovery))
	assert.Equal(t, DashboardStage{3, "Finalizing Universities"}, Dashboard(true, StageFinalization))
	assert.Equal(t, DashboardStage{4, "Preparing Applications"}, Dashboard(true, StagePreparation))
}
