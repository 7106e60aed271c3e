package reward

import "byte-battle/internal/store"

const (
	BadgeConsistencyKing  = "Consistency King"
	BadgeRisingStar       = "Rising Star"
	BadgeDedicatedScholar = "Dedicated Scholar"
	BadgeCenturion        = "Centurion"
	BadgeQuizMaster       = "Quiz Master"
)

type badgeRule struct {
	badge string
	met   func(a store.Actor) bool
}

var badgeRules = []badgeRule{
	{BadgeConsistencyKing, func(a store.Actor) bool { return a.CurrentStreak >= 30 }},
	{BadgeRisingStar, func(a store.Actor) bool { return a.Level >= 10 }},
	{BadgeDedicatedScholar, func(a store.Actor) bool { return a.Level >= 50 }},
	{BadgeCenturion, func(a store.Actor) bool { return a.Level >= 100 }},
}

// earnedBadges lists every threshold badge the actor currently qualifies for.
// Granting is idempotent at the store, so re-evaluation is safe.
func earnedBadges(a store.Actor) []string {
	out := []string{}
	for _, r := range badgeRules {
		if r.met(a) {
			out = append(out, r.badge)
		}
	}
	return out
}
