package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"byte-battle/internal/config"

	"github.com/rs/zerolog/log"
)

// Gateway generates problems and judges submissions through a Completer.
// Both operations always return a usable value: on error the fallback
// problem or a draw verdict comes back alongside the error.
type Gateway struct {
	c Completer
}

func NewGateway(c Completer) *Gateway {
	if c == nil {
		c = offlineCompleter{}
	}
	return &Gateway{c: c}
}

// FromConfig builds an HTTP-backed gateway, or an offline one that always
// falls back when no URL is configured.
func FromConfig(cfg config.JudgeConfig) *Gateway {
	if strings.TrimSpace(cfg.URL) == "" {
		log.Warn().Msg("judge_offline_fallback_only")
		return NewGateway(nil)
	}
	return NewGateway(NewHTTPCompleter(cfg))
}

func (g *Gateway) GenerateProblem(ctx context.Context, difficulty, language string) (Problem, error) {
	prompt := fmt.Sprintf(
		"Generate a single %s difficulty coding interview problem suitable for %s. "+
			"Return ONLY valid JSON with this structure: "+
			`{ "title": "Problem Title", "description": "Clear problem statement...", `+
			`"input_format": "Input description...", "output_format": "Output description...", `+
			`"example_input": "...", "example_output": "..." }`,
		difficulty, language)
	text, err := g.c.Complete(ctx, prompt)
	if err != nil {
		metricFallbackTotal.Add(1)
		return FallbackProblem, fmt.Errorf("generate problem: %w", err)
	}
	p, err := parseProblem(text)
	if err != nil {
		metricFallbackTotal.Add(1)
		return FallbackProblem, fmt.Errorf("generate problem: %w", err)
	}
	return p, nil
}

func (g *Gateway) Judge(ctx context.Context, problem Problem, subs []Submission) (Verdict, error) {
	if len(subs) == 0 {
		return DrawVerdict("No submissions to judge."), nil
	}
	labelled := labelSubmissions(subs)
	text, err := g.c.Complete(ctx, judgePrompt(problem, labelled))
	if err != nil {
		metricFallbackTotal.Add(1)
		return DrawVerdict("The referee could not judge this round. It's a draw!"), fmt.Errorf("judge: %w", err)
	}
	v, err := parseVerdict(text, labelled)
	if err != nil {
		metricFallbackTotal.Add(1)
		return DrawVerdict("The referee returned an unreadable verdict. It's a draw!"), fmt.Errorf("judge: %w", err)
	}
	return v, nil
}

func judgePrompt(problem Problem, labelled []labelledSubmission) string {
	problemJSON, _ := json.Marshal(problem)
	var b strings.Builder
	fmt.Fprintf(&b, "You are the referee of a coding battle. Problem: %s\n", problemJSON)
	b.WriteString("Submissions:\n")
	for _, s := range labelled {
		fmt.Fprintf(&b, "\nPlayer (%s) [id: %s] Code [Time: %.1fs]:\n%s\n", s.label, s.ActorID, s.ElapsedSeconds, s.Code)
	}
	b.WriteString("Evaluate based on: 1. Correctness (Passes all edge cases?) 2. Logic quality 3. Time Taken.\n")
	b.WriteString(`Return ONLY valid JSON: { "winner": "Player Name" (or 'Draw'), "reason": "Why they won...", ` +
		`"winner_id": "player id or null if draw", "scores": { "Player 1 Name": 90, "Player 2 Name": 85 } }`)
	return b.String()
}
