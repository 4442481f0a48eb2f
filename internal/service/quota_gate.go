package service

import (
	"noctuai/internal/errors"
	"noctuai/internal/model"
)

// DefaultFreeUsageLimit caps metered invocations for free users.
const DefaultFreeUsageLimit = 10

// FeaturePolicy tags how a feature is gated: against the free-usage counter,
// or behind the premium plan with no counter involved.
type FeaturePolicy int

const (
	// PolicyMetered features count against the free-usage limit.
	PolicyMetered FeaturePolicy = iota
	// PolicyPremiumOnly features require a premium plan unconditionally.
	PolicyPremiumOnly
)

// Feature identifies one gated capability.
type Feature string

const (
	FeatureArticle          Feature = "generate-article"
	FeatureBlogTitle        Feature = "generate-blog-title"
	FeatureImage            Feature = "generate-image"
	FeatureRemoveBackground Feature = "remove-image-background"
	FeatureRemoveObject     Feature = "remove-image-object"
	FeatureResumeReview     Feature = "resume-review"
)

// featurePolicies is the exhaustive feature -> policy table.
var featurePolicies = map[Feature]FeaturePolicy{
	FeatureArticle:          PolicyMetered,
	FeatureBlogTitle:        PolicyMetered,
	FeatureImage:            PolicyPremiumOnly,
	FeatureRemoveBackground: PolicyPremiumOnly,
	FeatureRemoveObject:     PolicyPremiumOnly,
	FeatureResumeReview:     PolicyPremiumOnly,
}

// PolicyFor returns the gating policy for a feature. Unknown features are
// treated as premium-only.
func PolicyFor(feature Feature) FeaturePolicy {
	if policy, ok := featurePolicies[feature]; ok {
		return policy
	}
	return PolicyPremiumOnly
}

// QuotaDecision is the outcome of the gate for one request. NextUsage is only
// meaningful when Allowed is true under the metered policy for a free user; it
// is the counter value the caller must persist after the feature succeeds.
type QuotaDecision struct {
	Allowed   bool
	Reason    string
	NextUsage int
}

// Decide is the pure entitlement gate. Premium users are always allowed and
// their counter is untouched. Free users pass metered features while under the
// limit and are denied premium-only features outright.
func Decide(policy FeaturePolicy, plan model.Plan, freeUsage, limit int) QuotaDecision {
	if plan == model.PlanPremium {
		return QuotaDecision{Allowed: true}
	}

	switch policy {
	case PolicyMetered:
		if freeUsage >= limit {
			return QuotaDecision{Allowed: false, Reason: errors.ErrQuotaExceeded.Error()}
		}
		return QuotaDecision{Allowed: true, NextUsage: freeUsage + 1}
	default:
		return QuotaDecision{Allowed: false, Reason: errors.ErrPremiumRequired.Error()}
	}
}

// DecisionError maps a denial to its sentinel error. Callers must only invoke
// this when the decision is a denial.
func DecisionError(policy FeaturePolicy) error {
	if policy == PolicyMetered {
		return errors.ErrQuotaExceeded
	}
	return errors.ErrPremiumRequired
}
