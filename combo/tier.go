package combo

// RiskTier is the categorical risk label attached to selected variants.
type RiskTier uint8

const (
	TierUnassigned RiskTier = iota
	TierLow
	TierMedium
	TierHigh
)

// Tiers lists the assignable tiers in display order.
var Tiers = []RiskTier{TierLow, TierMedium, TierHigh}

func (t RiskTier) String() string {
	switch t {
	case TierLow:
		return "Low"
	case TierMedium:
		return "Medium"
	case TierHigh:
		return "High"
	default:
		return "Unassigned"
	}
}
