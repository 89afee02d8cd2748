package tier

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want Tier
		ok   bool
	}{
		{"free", Free, true},
		{" Premium ", Premium, true},
		{"PRO", Pro, true},
		{"founders", Founders, true},
		{"", "", false},
		{"gold", "", false},
	}
	for _, tc := range cases {
		got, errParse := Parse(tc.raw)
		if tc.ok {
			if errParse != nil {
				t.Fatalf("Parse(%q): unexpected error %v", tc.raw, errParse)
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %q, want %q", tc.raw, got, tc.want)
			}
			continue
		}
		if !errors.Is(errParse, ErrInvalidTier) {
			t.Fatalf("Parse(%q): expected ErrInvalidTier, got %v", tc.raw, errParse)
		}
	}
}

func TestResolveQuotaBoundary(t *testing.T) {
	for _, tr := range All() {
		p, errPolicy := PolicyFor(tr)
		if errPolicy != nil {
			t.Fatalf("PolicyFor(%s): %v", tr, errPolicy)
		}
		quota := p.DailyIdentifications
		if quota == Unlimited {
			continue
		}

		below, errBelow := Resolve(tr, FeatureIdentification, quota-1)
		if errBelow != nil {
			t.Fatalf("Resolve(%s, quota-1): %v", tr, errBelow)
		}
		if !below.Allowed {
			t.Fatalf("Resolve(%s, usage=%d): expected allowed", tr, quota-1)
		}
		if below.Remaining != 0 {
			t.Fatalf("Resolve(%s, usage=%d): expected remaining=0, got %d", tr, quota-1, below.Remaining)
		}

		at, errAt := Resolve(tr, FeatureIdentification, quota)
		if errAt != nil {
			t.Fatalf("Resolve(%s, quota): %v", tr, errAt)
		}
		if at.Allowed {
			t.Fatalf("Resolve(%s, usage=%d): expected denied", tr, quota)
		}
		if at.Reason != ReasonQuotaExceeded {
			t.Fatalf("Resolve(%s, usage=%d): expected quota_exceeded, got %q", tr, quota, at.Reason)
		}
	}
}

func TestResolveUnlimitedSentinel(t *testing.T) {
	// The sentinel must compare greater than any usage count.
	for _, usage := range []int{0, 1, 999, 1 << 30} {
		d, errResolve := Resolve(Founders, FeatureIdentification, usage)
		if errResolve != nil {
			t.Fatalf("Resolve(founders, %d): %v", usage, errResolve)
		}
		if !d.Allowed {
			t.Fatalf("Resolve(founders, %d): expected allowed", usage)
		}
		if d.Remaining != Unlimited {
			t.Fatalf("Resolve(founders, %d): expected unlimited remaining, got %d", usage, d.Remaining)
		}
	}
}

func TestResolveBooleanFeatures(t *testing.T) {
	cases := []struct {
		tier    Tier
		feature Feature
		allowed bool
	}{
		{Free, FeatureMarketplaceSelling, false},
		{Premium, FeatureMarketplaceSelling, true},
		{Pro, FeatureMarketplaceSelling, true},
		{Founders, FeatureMarketplaceSelling, true},
		{Free, FeatureAdvancedAI, false},
		{Premium, FeatureAdvancedAI, false},
		{Pro, FeatureAdvancedAI, true},
		{Founders, FeatureAdvancedAI, true},
	}
	for _, tc := range cases {
		d, errResolve := Resolve(tc.tier, tc.feature, 0)
		if errResolve != nil {
			t.Fatalf("Resolve(%s, %s): %v", tc.tier, tc.feature, errResolve)
		}
		if d.Allowed != tc.allowed {
			t.Fatalf("Resolve(%s, %s): allowed=%v, want %v", tc.tier, tc.feature, d.Allowed, tc.allowed)
		}
		if !tc.allowed && d.Reason != ReasonTierInsufficient {
			t.Fatalf("Resolve(%s, %s): expected tier_insufficient, got %q", tc.tier, tc.feature, d.Reason)
		}
	}
}

func TestResolveInvalidInputs(t *testing.T) {
	if _, errResolve := Resolve(Tier("gold"), FeatureIdentification, 0); !errors.Is(errResolve, ErrInvalidTier) {
		t.Fatalf("expected ErrInvalidTier, got %v", errResolve)
	}
	if _, errResolve := Resolve(Free, FeatureIdentification, -1); !errors.Is(errResolve, ErrNegativeUsage) {
		t.Fatalf("expected ErrNegativeUsage, got %v", errResolve)
	}
	if _, errResolve := Resolve(Free, Feature("teleportation"), 0); errResolve == nil {
		t.Fatal("expected error for unknown feature")
	}
}

func TestResolveMonotonicInTier(t *testing.T) {
	properties := gopter.NewProperties(nil)

	tiers := All()
	features := []Feature{
		FeatureIdentification,
		FeatureCollectionSize,
		FeatureMarketplaceSelling,
		FeatureAdvancedAI,
	}

	// Any access allowed at a lower tier is allowed at every higher tier.
	properties.Property("higher tiers never lose access", prop.ForAll(
		func(lowIdx, highIdx, featureIdx, usage int) bool {
			if lowIdx > highIdx {
				lowIdx, highIdx = highIdx, lowIdx
			}
			low, errLow := Resolve(tiers[lowIdx], features[featureIdx], usage)
			if errLow != nil {
				return false
			}
			high, errHigh := Resolve(tiers[highIdx], features[featureIdx], usage)
			if errHigh != nil {
				return false
			}
			return !low.Allowed || high.Allowed
		},
		gen.IntRange(0, len(tiers)-1),
		gen.IntRange(0, len(tiers)-1),
		gen.IntRange(0, len(features)-1),
		gen.IntRange(0, 100),
	))

	properties.Property("allowed iff usage below quota", prop.ForAll(
		func(tierIdx, usage int) bool {
			tr := tiers[tierIdx]
			p, errPolicy := PolicyFor(tr)
			if errPolicy != nil {
				return false
			}
			d, errResolve := Resolve(tr, FeatureIdentification, usage)
			if errResolve != nil {
				return false
			}
			if p.DailyIdentifications == Unlimited {
				return d.Allowed
			}
			return d.Allowed == (usage < p.DailyIdentifications)
		},
		gen.IntRange(0, len(tiers)-1),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
