package battle

import (
	"context"
	"fmt"
	"time"

	"byte-battle/internal/judge"
	"byte-battle/internal/reward"

	"github.com/rs/zerolog/log"
)

const settleTimeout = 10 * time.Second

// background runs fn off the room goroutine. In-flight gateway calls outlive
// a closed room; their results are dropped by the round and state checks
// inside exec.
func (r *room) background(fn func(ctx context.Context)) {
	r.reg.bg.Add(1)
	go func() {
		defer r.reg.bg.Done()
		fn(context.Background())
	}()
}

func (r *room) applyConfig(u ConfigUpdate) {
	if u.empty() {
		return
	}
	if u.Difficulty != "" {
		r.config.Difficulty = u.Difficulty
		r.system(fmt.Sprintf("Difficulty set to %s.", u.Difficulty))
	}
	if u.Language != "" {
		r.config.Language = u.Language
		r.system(fmt.Sprintf("Language set to %s.", u.Language))
	}
	switch {
	case r.config.complete():
		if err := r.startGeneration(); err != nil {
			log.Warn().Err(err).Str("room_code", r.code).Msg("generation_not_started")
		}
	case r.config.Difficulty == "":
		r.system("Now pick a difficulty: Easy, Medium or Hard.")
	default:
		r.system("Now pick a language: Python, JavaScript, Java, C++ or C.")
	}
}

func (r *room) startGeneration() error {
	if err := r.transition(StateGenerating); err != nil {
		return err
	}
	r.round++
	round, cfg := r.round, r.config
	r.system(fmt.Sprintf("Generating a %s problem in %s...", cfg.Difficulty, cfg.Language))
	gw := r.reg.gateway
	r.background(func(ctx context.Context) {
		problem, err := judge.FallbackProblem, error(nil)
		if gw != nil {
			problem, err = gw.GenerateProblem(ctx, string(cfg.Difficulty), string(cfg.Language))
		}
		if err != nil {
			log.Warn().Err(err).Str("room_code", r.code).Msg("problem_generation_failed")
		}
		_ = r.exec(ctx, func(r *room) error {
			if r.state != StateGenerating || r.round != round {
				return nil
			}
			return r.beginBattle(problem, err != nil || gw == nil)
		})
	})
	return nil
}

func (r *room) beginBattle(p judge.Problem, fallback bool) error {
	now := r.reg.now()
	r.problem = &p
	r.fallback = fallback
	r.startedAt = now
	r.deadline = now.Add(r.reg.duration)
	r.submissions = map[string]submission{}
	if err := r.transition(StateBattle); err != nil {
		return err
	}
	if fallback {
		r.system("The problem generator is unavailable, so here is a classic.")
	}
	r.broadcast(EventBattleStarted, BattleStartedPayload{
		Problem:         p,
		StartedAt:       r.startedAt,
		Deadline:        r.deadline,
		DurationSeconds: int(r.reg.duration.Seconds()),
		Fallback:        fallback,
	})
	r.system(fmt.Sprintf("Battle started: %s. Submit your solution when ready!", p.Title))

	round := r.round
	r.stopTimer()
	r.timer = r.reg.afterFunc(r.reg.duration, func() {
		_ = r.exec(context.Background(), func(r *room) error {
			if r.state != StateBattle || r.round != round {
				return nil
			}
			r.broadcast(EventBattleTimeUp, BattleStartedPayload{
				Problem:         *r.problem,
				StartedAt:       r.startedAt,
				Deadline:        r.deadline,
				DurationSeconds: int(r.reg.duration.Seconds()),
				Fallback:        r.fallback,
			})
			r.system("Time is up! Submit what you have.")
			return nil
		})
	})
	log.Info().Str("room_code", r.code).Int("round", round).Bool("fallback", fallback).Msg("battle_started")
	return nil
}

func (r *room) startJudging() error {
	r.stopTimer()
	if err := r.transition(StateJudging); err != nil {
		return err
	}
	r.system("All solutions received. ByteBot is judging...")

	round, problem, cfg := r.round, *r.problem, r.config
	subs := make([]judge.Submission, 0, len(r.members))
	for _, m := range r.members {
		s := r.submissions[m.ID]
		subs = append(subs, judge.Submission{ActorID: m.ID, Name: m.Name, Code: s.code, ElapsedSeconds: s.elapsed})
	}
	gw, rw, code := r.reg.gateway, r.reg.rewarder, r.code
	r.background(func(ctx context.Context) {
		verdict, err := judge.DrawVerdict("The judge is unavailable, so this round is a draw."), error(nil)
		if gw != nil {
			verdict, err = gw.Judge(ctx, problem, subs)
		}
		if err != nil {
			log.Warn().Err(err).Str("room_code", code).Msg("judging_failed")
		}
		if verdict.Fallback || gw == nil {
			metricJudgeFallbackTotal.Add(1)
		}
		metricBattlesJudgedTotal.Add(1)
		awarded := settle(ctx, rw, cfg.Difficulty, verdict, subs)
		_ = r.exec(ctx, func(r *room) error {
			if r.state != StateJudging || r.round != round {
				return nil
			}
			return r.publishResult(verdict, awarded)
		})
	})
	return nil
}

// settle credits battle experience: the full base amount to a winner, half of
// it to every participant on a draw. Awards stand even if the room has closed.
func settle(ctx context.Context, rw Rewarder, d Difficulty, v judge.Verdict, subs []judge.Submission) map[string]int64 {
	awarded := make(map[string]int64, len(subs))
	if rw == nil {
		return awarded
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()
	base := BaseXP(d)
	for _, s := range subs {
		source, amount := reward.SourceBattleDraw, base/2
		if !v.IsDraw() {
			if s.ActorID != v.WinnerActorID {
				continue
			}
			source, amount = reward.SourceBattleWin, base
		}
		res, err := rw.Award(reward.WithDisplayName(ctx, s.Name), s.ActorID, source, amount)
		if err != nil {
			log.Error().Err(err).Str("actor_id", s.ActorID).Str("source", source).Msg("battle_award_failed")
			continue
		}
		awarded[s.ActorID] = res.Applied
	}
	return awarded
}

func (r *room) publishResult(v judge.Verdict, awarded map[string]int64) error {
	if err := r.transition(StateResult); err != nil {
		return err
	}
	r.votes = map[string]bool{}
	scores := v.Scores
	if scores == nil {
		scores = map[string]int{}
	}
	r.broadcast(EventBattleResult, ResultPayload{
		WinnerActorID: v.WinnerActorID,
		Winner:        v.WinnerName,
		Reason:        v.Reason,
		Draw:          v.IsDraw(),
		Fallback:      v.Fallback,
		Scores:        scores,
		XPAwarded:     awarded,
	})
	if v.IsDraw() {
		r.system("It's a draw! " + v.Reason)
	} else {
		r.system(fmt.Sprintf("%s wins! %s", v.WinnerName, v.Reason))
	}
	r.system("Do you want another round? (yes / no)")
	log.Info().Str("room_code", r.code).Str("winner_actor_id", v.WinnerActorID).Bool("draw", v.IsDraw()).Msg("battle_judged")
	return nil
}

// restart returns the room to setup after a unanimous rematch vote.
func (r *room) restart() error {
	r.stopTimer()
	if err := r.transition(StateSetup); err != nil {
		return err
	}
	r.config = Config{}
	r.problem = nil
	r.fallback = false
	r.startedAt, r.deadline = time.Time{}, time.Time{}
	r.submissions = map[string]submission{}
	r.votes = map[string]bool{}
	r.broadcast(EventRematchRestart, StatePayload{State: r.state, Config: r.config})
	r.system("Rematch! Host, pick a difficulty and a language.")
	return nil
}
