package reward

const PointsPerLevel = 500

// LevelFor derives the level from a point total: floor(total/500)+1, never below 1.
func LevelFor(total int64) int {
	if total < 0 {
		return 1
	}
	return int(total/PointsPerLevel) + 1
}

type Rank struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	MinLevel int    `json:"min_level"`
	// MaxLevel of zero means the band is open-ended.
	MaxLevel int `json:"max_level,omitempty"`
}

// ranks are ordered, contiguous and cover every level from 1 upward.
var ranks = []Rank{
	{Name: "Bronze", Icon: "fa-shield-halved", Color: "#CD7F32", MinLevel: 1, MaxLevel: 5},
	{Name: "Silver", Icon: "fa-shield-halved", Color: "#C0C0C0", MinLevel: 6, MaxLevel: 10},
	{Name: "Gold", Icon: "fa-shield-halved", Color: "#FFD700", MinLevel: 11, MaxLevel: 20},
	{Name: "Platinum", Icon: "fa-gem", Color: "#E5E4E2", MinLevel: 21, MaxLevel: 35},
	{Name: "Diamond", Icon: "fa-gem", Color: "#b9f2ff", MinLevel: 36, MaxLevel: 50},
	{Name: "Heroic", Icon: "fa-crown", Color: "#ff4d4d", MinLevel: 51, MaxLevel: 75},
	{Name: "Master", Icon: "fa-crown", Color: "#ff0000", MinLevel: 76, MaxLevel: 100},
	{Name: "Grandmaster", Icon: "fa-dragon", Color: "#800080", MinLevel: 101},
}

func Ranks() []Rank {
	return append([]Rank(nil), ranks...)
}

func RankFor(level int) Rank {
	for _, r := range ranks {
		if level >= r.MinLevel && (r.MaxLevel == 0 || level <= r.MaxLevel) {
			return r
		}
	}
	return ranks[0]
}
