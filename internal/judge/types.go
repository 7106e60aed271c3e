package judge

import "errors"

var (
	ErrNotConfigured   = errors.New("judge_not_configured")
	ErrCircuitOpen     = errors.New("judge_circuit_open")
	ErrMalformedOutput = errors.New("judge_malformed_output")
	ErrUpstream        = errors.New("judge_upstream_error")
)

type Problem struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	InputFormat   string `json:"input_format"`
	OutputFormat  string `json:"output_format"`
	ExampleInput  string `json:"example_input"`
	ExampleOutput string `json:"example_output"`
}

// FallbackProblem is served whenever generation fails.
var FallbackProblem = Problem{
	Title:         "Palindrome Check",
	Description:   "Write a program to check if a string is a palindrome.",
	InputFormat:   "A single string S.",
	OutputFormat:  "Print 'YES' if palindrome, else 'NO'.",
	ExampleInput:  "racecar",
	ExampleOutput: "YES",
}

type Submission struct {
	ActorID        string  `json:"actor_id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Verdict is a judged outcome. An empty WinnerActorID is a draw.
type Verdict struct {
	WinnerActorID string         `json:"winner_actor_id,omitempty"`
	WinnerName    string         `json:"winner"`
	Reason        string         `json:"reason"`
	Scores        map[string]int `json:"scores"`
	Fallback      bool           `json:"fallback,omitempty"`
}

func (v Verdict) IsDraw() bool { return v.WinnerActorID == "" }

const drawName = "Draw"

// DrawVerdict is the outcome used when judging cannot complete.
func DrawVerdict(reason string) Verdict {
	return Verdict{WinnerName: drawName, Reason: reason, Scores: map[string]int{}, Fallback: true}
}
