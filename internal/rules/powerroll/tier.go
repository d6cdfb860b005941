package powerroll

// Tier is the categorical outcome band of an evaluated power roll.
type Tier int

const (
	TierUnknown Tier = iota
	Tier1
	Tier2
	Tier3
)

// Tier thresholds: tier 1 is always satisfied, tier 2 and 3 require the
// evaluated total to meet their minimum.
const (
	tier2Threshold = 12
	tier3Threshold = 17
)

// String returns the stable tier name, e.g. "tier1".
func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return ""
	}
}

// LabelKey returns the localization key for the tier's display label.
func (t Tier) LabelKey() string {
	switch t {
	case Tier1:
		return "powerroll.tier.1"
	case Tier2:
		return "powerroll.tier.2"
	case Tier3:
		return "powerroll.tier.3"
	default:
		return ""
	}
}

// StyleClass returns the tier name as a display style token.
func (t Tier) StyleClass() string {
	return t.String()
}

// tierForTotal counts satisfied thresholds and applies the net-boon tier
// adjustment. A net boon of magnitude 1 already altered the total through
// the injected modifier term and contributes nothing here; magnitude 2
// leaves the total alone and shifts the tier by one step instead.
func tierForTotal(total, netBoon int) Tier {
	raw := 1
	if total >= tier2Threshold {
		raw++
	}
	if total >= tier3Threshold {
		raw++
	}

	adjusted := raw + netBoon - sign(netBoon)
	if adjusted < 1 {
		adjusted = 1
	}
	if adjusted > 3 {
		adjusted = 3
	}
	return Tier(adjusted)
}

func sign(value int) int {
	switch {
	case value > 0:
		return 1
	case value < 0:
		return -1
	default:
		return 0
	}
}
