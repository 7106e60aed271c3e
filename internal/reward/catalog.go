package reward

import "time"

const (
	defaultModifierDuration = 24 * time.Hour

	maxMultiplierFactor = 100
	maxInstantPoints    = 100 * PointsPerLevel
)

// maxFactor bounds the factor a grant may set for kind.
func maxFactor(k ModifierKind) float64 {
	if k == KindInstantPoints {
		return maxInstantPoints
	}
	return maxMultiplierFactor
}

// Item is a purchasable or grantable modifier.
type Item struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Kind        ModifierKind  `json:"kind"`
	Factor      float64       `json:"factor"`
	Duration    time.Duration `json:"-"`
	Price       int64         `json:"price"`
}

var catalog = []Item{
	{ID: "xp_boost", Name: "XP Boost", Description: "Double points on every award.", Kind: KindPointMultiplier, Factor: 2, Duration: defaultModifierDuration, Price: 500},
	{ID: "mega_xp_boost", Name: "Mega XP Boost", Description: "Five times the points on every award.", Kind: KindPointMultiplier, Factor: 5, Duration: defaultModifierDuration, Price: 2000},
	{ID: "double_time", Name: "Double Time", Description: "Focus minutes count twice.", Kind: KindDurationMultiplier, Factor: 2, Duration: defaultModifierDuration, Price: 750},
	{ID: "xp_shield", Name: "XP Shield", Description: "Blocks point deductions.", Kind: KindLossProtection, Factor: 1, Duration: defaultModifierDuration, Price: 1000},
	{ID: "instant_level", Name: "Instant Level", Description: "Adds one level worth of points.", Kind: KindInstantPoints, Factor: PointsPerLevel, Price: 600},
}

func Catalog() []Item {
	return append([]Item(nil), catalog...)
}

func LookupItem(id string) (Item, error) {
	for _, it := range catalog {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrUnknownItem
}
