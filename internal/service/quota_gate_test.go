package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"noctuai/internal/model"
)

func TestDecide_Metered(t *testing.T) {
	tests := []struct {
		name          string
		plan          model.Plan
		freeUsage     int
		wantAllowed   bool
		wantNextUsage int
		wantReason    string
	}{
		{
			name:          "free user under limit",
			plan:          model.PlanFree,
			freeUsage:     0,
			wantAllowed:   true,
			wantNextUsage: 1,
		},
		{
			name:          "free user one below limit",
			plan:          model.PlanFree,
			freeUsage:     9,
			wantAllowed:   true,
			wantNextUsage: 10,
		},
		{
			name:        "free user at limit",
			plan:        model.PlanFree,
			freeUsage:   10,
			wantAllowed: false,
			wantReason:  "Free usage limit reached. Please upgrade to premium.",
		},
		{
			name:        "free user over limit",
			plan:        model.PlanFree,
			freeUsage:   25,
			wantAllowed: false,
			wantReason:  "Free usage limit reached. Please upgrade to premium.",
		},
		{
			name:        "premium user under limit",
			plan:        model.PlanPremium,
			freeUsage:   3,
			wantAllowed: true,
		},
		{
			name:        "premium user far over limit",
			plan:        model.PlanPremium,
			freeUsage:   1000,
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(PolicyMetered, tt.plan, tt.freeUsage, DefaultFreeUsageLimit)

			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			assert.Equal(t, tt.wantNextUsage, decision.NextUsage)
			assert.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestDecide_PremiumOnly(t *testing.T) {
	tests := []struct {
		name        string
		plan        model.Plan
		freeUsage   int
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "free user denied regardless of usage",
			plan:        model.PlanFree,
			freeUsage:   0,
			wantAllowed: false,
			wantReason:  "This feature is only available to premium users. Please upgrade your plan.",
		},
		{
			name:        "premium user allowed",
			plan:        model.PlanPremium,
			freeUsage:   0,
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(PolicyPremiumOnly, tt.plan, tt.freeUsage, DefaultFreeUsageLimit)

			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			assert.Equal(t, tt.wantReason, decision.Reason)
			// Premium-only gating never touches the counter.
			assert.Zero(t, decision.NextUsage)
		})
	}
}

func TestDecide_CustomLimit(t *testing.T) {
	decision := Decide(PolicyMetered, model.PlanFree, 2, 3)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 3, decision.NextUsage)

	decision = Decide(PolicyMetered, model.PlanFree, 3, 3)
	assert.False(t, decision.Allowed)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, PolicyMetered, PolicyFor(FeatureArticle))
	assert.Equal(t, PolicyMetered, PolicyFor(FeatureBlogTitle))
	assert.Equal(t, PolicyPremiumOnly, PolicyFor(FeatureImage))
	assert.Equal(t, PolicyPremiumOnly, PolicyFor(FeatureRemoveBackground))
	assert.Equal(t, PolicyPremiumOnly, PolicyFor(FeatureRemoveObject))
	assert.Equal(t, PolicyPremiumOnly, PolicyFor(FeatureResumeReview))
	assert.Equal(t, PolicyPremiumOnly, PolicyFor(Feature("unknown")))
}
