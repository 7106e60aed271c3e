package reward

import "context"

// RecordEvent turns a product event into the matching ledger operation.
func (l *Ledger) RecordEvent(ctx context.Context, actorID string, ev Event) (Result, error) {
	switch ev.Type {
	case EventTaskCompleted:
		return l.Award(ctx, actorID, SourceTask, taskPoints)
	case EventTaskReopened:
		return l.Penalize(ctx, actorID, SourceTaskUndo, taskPoints, true)
	case EventSessionGoal:
		return l.Award(ctx, actorID, SourceSessionGoal, sessionGoalPoints)
	case EventHabit:
		return l.Award(ctx, actorID, SourceHabit, habitPoints)
	case EventFocusSession:
		if ev.Minutes <= 0 {
			return Result{}, ErrInvalidAmount
		}
		return l.Award(ctx, actorID, SourceFocus, int64(ev.Minutes))
	case EventQuiz:
		return l.recordQuiz(ctx, actorID, ev.Correct, ev.Total)
	default:
		return Result{}, ErrUnknownSource
	}
}

func (l *Ledger) recordQuiz(ctx context.Context, actorID string, correct, total int) (Result, error) {
	if total <= 0 || correct < 0 || correct > total {
		return Result{}, ErrInvalidAmount
	}
	points := int64(correct * quizPointsPerHit)
	var extra []string
	if correct == total {
		points += quizPerfectBonus
		extra = append(extra, BadgeQuizMaster)
	}
	if points == 0 {
		return Result{ActorID: actorID, Source: SourceQuiz, Reason: ReasonNothingEarned, Multiplier: 1}, nil
	}
	return l.award(ctx, actorID, SourceQuiz, points, extra)
}
