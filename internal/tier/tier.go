package tier

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is a subscription level governing feature quotas and access.
type Tier string

// Subscription tiers, ordered free < premium < pro < founders.
const (
	Free     Tier = "free"
	Premium  Tier = "premium"
	Pro      Tier = "pro"
	Founders Tier = "founders"
)

// ErrInvalidTier indicates an unrecognized tier value. Never silently defaulted.
var ErrInvalidTier = errors.New("tier: invalid subscription tier")

// ErrNegativeUsage indicates a negative usage counter was passed to Resolve.
var ErrNegativeUsage = errors.New("tier: usage must not be negative")

var tierRanks = map[Tier]int{
	Free:     0,
	Premium:  1,
	Pro:      2,
	Founders: 3,
}

// Parse converts a raw string into a Tier.
func Parse(raw string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := tierRanks[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
	}
	return t, nil
}

// Valid reports whether the tier is one of the enumerated values.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// Rank returns the tier's position in the total ordering. Higher is better.
func (t Tier) Rank() int {
	return tierRanks[t]
}

// AtLeast reports whether t is ranked at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Valid() && other.Valid() && t.Rank() >= other.Rank()
}

// All lists the tiers in ascending order.
func All() []Tier {
	return []Tier{Free, Premium, Pro, Founders}
}

// Feature is a gated feature key.
type Feature string

// Gated features.
const (
	FeatureIdentification     Feature = "crystal_identification"
	FeatureCollectionSize     Feature = "collection_size"
	FeatureMarketplaceSelling Feature = "marketplace_selling"
	FeatureAdvancedAI         Feature = "advanced_ai"
)

// Unlimited is the sentinel quota that compares greater than any usage count.
const Unlimited = -1

// ModelClass selects which AI model tier serves a request.
type ModelClass string

// Model classes in ascending capability.
const (
	ModelClassBase      ModelClass = "base"
	ModelClassUpgraded  ModelClass = "upgraded"
	ModelClassPremium   ModelClass = "premium"
	ModelClassConsensus ModelClass = "multi_model_consensus"
)

// Policy is the static per-tier feature policy.
type Policy struct {
	DailyIdentifications int        // Identifications per day; Unlimited for no cap.
	MaxCollectionSize    int        // Max owned crystals; Unlimited for no cap.
	MarketplaceSelling   bool       // Whether the tier may sell on the marketplace.
	AdvancedAI           bool       // Whether the tier gets advanced AI access.
	ModelClass           ModelClass // AI model class used for this tier.
}

// policies is the single source of truth for tier gating. Every call site
// (profile quota display, identification gate, marketplace gate) resolves
// against this table.
var policies = map[Tier]Policy{
	Free: {
		DailyIdentifications: 5,
		MaxCollectionSize:    5,
		MarketplaceSelling:   false,
		AdvancedAI:           false,
		ModelClass:           ModelClassBase,
	},
	Premium: {
		DailyIdentifications: 30,
		MaxCollectionSize:    Unlimited,
		MarketplaceSelling:   true,
		AdvancedAI:           false,
		ModelClass:           ModelClassUpgraded,
	},
	Pro: {
		DailyIdentifications: Unlimited,
		MaxCollectionSize:    Unlimited,
		MarketplaceSelling:   true,
		AdvancedAI:           true,
		ModelClass:           ModelClassPremium,
	},
	Founders: {
		DailyIdentifications: Unlimited,
		MaxCollectionSize:    Unlimited,
		MarketplaceSelling:   true,
		AdvancedAI:           true,
		ModelClass:           ModelClassConsensus,
	},
}

// PolicyFor returns the static policy for a tier.
func PolicyFor(t Tier) (Policy, error) {
	p, ok := policies[t]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrInvalidTier, string(t))
	}
	return p, nil
}

// Reason explains why access was denied.
type Reason string

// Denial reasons.
const (
	ReasonNone             Reason = ""
	ReasonQuotaExceeded    Reason = "quota_exceeded"
	ReasonTierInsufficient Reason = "tier_insufficient"
)

// Decision describes the outcome of an access check.
type Decision struct {
	Allowed   bool
	Reason    Reason
	Remaining int // Remaining quota for numeric features; Unlimited when uncapped.
}

// quotaFor returns the numeric quota for a feature, or ok=false for
// boolean-gated features.
func quotaFor(p Policy, feature Feature) (int, bool) {
	switch feature {
	case FeatureIdentification:
		return p.DailyIdentifications, true
	case FeatureCollectionSize:
		return p.MaxCollectionSize, true
	default:
		return 0, false
	}
}

// Resolve decides whether a tier may use a feature given its usage so far.
//
// Numeric-quota features allow while usageSoFar < quota; boolean features gate
// on tier membership. Pure function of its inputs and the static policy table.
func Resolve(t Tier, feature Feature, usageSoFar int) (Decision, error) {
	p, errPolicy := PolicyFor(t)
	if errPolicy != nil {
		return Decision{}, errPolicy
	}
	if usageSoFar < 0 {
		return Decision{}, fmt.Errorf("%w: %d", ErrNegativeUsage, usageSoFar)
	}

	if quota, ok := quotaFor(p, feature); ok {
		if quota == Unlimited {
			return Decision{Allowed: true, Remaining: Unlimited}, nil
		}
		if usageSoFar < quota {
			return Decision{Allowed: true, Remaining: quota - usageSoFar - 1}, nil
		}
		return Decision{Allowed: false, Reason: ReasonQuotaExceeded}, nil
	}

	switch feature {
	case FeatureMarketplaceSelling:
		if p.MarketplaceSelling {
			return Decision{Allowed: true, Remaining: Unlimited}, nil
		}
	case FeatureAdvancedAI:
		if p.AdvancedAI {
			return Decision{Allowed: true, Remaining: Unlimited}, nil
		}
	default:
		return Decision{}, fmt.Errorf("tier: unknown feature %q", string(feature))
	}
	return Decision{Allowed: false, Reason: ReasonTierInsufficient}, nil
}
