package battle

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

type Language string

const (
	LanguagePython     Language = "Python"
	LanguageJavaScript Language = "JavaScript"
	LanguageJava       Language = "Java"
	LanguageCPP        Language = "C++"
	LanguageC          Language = "C"
)

var difficultyWords = map[string]Difficulty{
	"easy":   DifficultyEasy,
	"medium": DifficultyMedium,
	"hard":   DifficultyHard,
}

var languageWords = map[string]Language{
	"python":     LanguagePython,
	"py":         LanguagePython,
	"javascript": LanguageJavaScript,
	"js":         LanguageJavaScript,
	"java":       LanguageJava,
	"c++":        LanguageCPP,
	"cpp":        LanguageCPP,
	"c":          LanguageC,
}

// BaseXP is the full reward for winning a battle at the given difficulty.
func BaseXP(d Difficulty) int64 {
	switch d {
	case DifficultyMedium:
		return 500
	case DifficultyHard:
		return 1000
	default:
		return 100
	}
}

type Config struct {
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Language   Language   `json:"language,omitempty"`
}

func (c Config) complete() bool {
	return c.Difficulty != "" && c.Language != ""
}

// ConfigUpdate holds the settings recognised in one chat message.
type ConfigUpdate struct {
	Difficulty Difficulty
	Language   Language
}

func (u ConfigUpdate) empty() bool {
	return u.Difficulty == "" && u.Language == ""
}

// ParseConfigMessage matches whole words of a chat message against the fixed
// difficulty and language vocabulary. When a message names more than one
// value of a kind, the last one wins.
func ParseConfigMessage(text string) ConfigUpdate {
	var u ConfigUpdate
	for _, tok := range tokenize(text) {
		if d, ok := difficultyWords[tok]; ok {
			u.Difficulty = d
			continue
		}
		if l, ok := languageWords[tok]; ok {
			u.Language = l
		}
	}
	return u
}

// tokenize lowercases text and splits it into words of letters, digits and
// '+', so "C++," yields "c++" and "js!" yields "js".
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+':
			return false
		default:
			return true
		}
	})
}
