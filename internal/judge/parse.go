package judge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// extractJSON strips a Markdown code fence around model output, preferring a
// fence tagged json.
func extractJSON(text string) string {
	if _, after, ok := strings.Cut(text, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(text, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(text)
}

func parseProblem(text string) (Problem, error) {
	var p Problem
	if err := json.Unmarshal([]byte(extractJSON(text)), &p); err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
		return Problem{}, fmt.Errorf("%w: problem missing title or description", ErrMalformedOutput)
	}
	return p, nil
}

type rawVerdict struct {
	Winner   string             `json:"winner"`
	Reason   string             `json:"reason"`
	WinnerID json.RawMessage    `json:"winner_id"`
	Scores   map[string]float64 `json:"scores"`
}

// parseVerdict maps a model verdict back onto the labelled submissions. The
// winner is matched by id first, then by label; anything unmatched is a draw.
func parseVerdict(text string, labelled []labelledSubmission) (Verdict, error) {
	var raw rawVerdict
	if err := json.Unmarshal([]byte(extractJSON(text)), &raw); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	v := Verdict{WinnerName: drawName, Reason: strings.TrimSpace(raw.Reason), Scores: map[string]int{}}
	if id := rawID(raw.WinnerID); id != "" {
		for _, s := range labelled {
			if s.ActorID == id {
				v.WinnerActorID, v.WinnerName = s.ActorID, s.Name
			}
		}
	}
	if v.WinnerActorID == "" {
		winner := strings.TrimSpace(raw.Winner)
		for _, s := range labelled {
			if strings.EqualFold(s.label, winner) {
				v.WinnerActorID, v.WinnerName = s.ActorID, s.Name
			}
		}
	}
	for key, score := range raw.Scores {
		for _, s := range labelled {
			if strings.EqualFold(s.label, strings.TrimSpace(key)) || s.ActorID == key {
				v.Scores[s.ActorID] = int(score)
			}
		}
	}
	return v, nil
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

type labelledSubmission struct {
	Submission
	label string
}

// labelSubmissions gives every submission a distinct label for the prompt.
func labelSubmissions(subs []Submission) []labelledSubmission {
	seen := map[string]int{}
	out := make([]labelledSubmission, 0, len(subs))
	for _, s := range subs {
		base := strings.TrimSpace(s.Name)
		if base == "" {
			base = "Player"
		}
		seen[strings.ToLower(base)]++
		label := base
		if n := seen[strings.ToLower(base)]; n > 1 {
			label = base + " #" + strconv.Itoa(n)
		}
		out = append(out, labelledSubmission{Submission: s, label: label})
	}
	return out
}
