package reward

const (
	SourceTask        = "task"
	SourceTaskUndo    = "task_undo"
	SourceFocus       = "focus"
	SourceSessionGoal = "session_goal"
	SourceHabit       = "habit"
	SourceQuiz        = "quiz"
	SourceBattleWin   = "battle_win"
	SourceBattleDraw  = "battle_draw"
	SourceAdmin       = "admin"
	SourcePurchase    = "purchase"
	SourceModifier    = "modifier"
)

// FocusDailyCap bounds the points one actor can earn from focus sessions per day.
const FocusDailyCap = 500

var dailyCaps = map[string]int64{
	SourceFocus: FocusDailyCap,
}

func durationSensitive(source string) bool {
	return source == SourceFocus
}

const (
	taskPoints        = 10
	sessionGoalPoints = 5
	habitPoints       = 5
	quizPointsPerHit  = 20
	quizPerfectBonus  = 50
)

// Event types accepted by RecordEvent.
const (
	EventTaskCompleted = "task_completed"
	EventTaskReopened  = "task_reopened"
	EventFocusSession  = "focus_session"
	EventSessionGoal   = "session_goal"
	EventHabit         = "habit"
	EventQuiz          = "quiz"
)

// Event is a product activity that earns or costs points.
type Event struct {
	Type    string `json:"type"`
	Minutes int    `json:"minutes,omitempty"`
	Correct int    `json:"correct,omitempty"`
	Total   int    `json:"total,omitempty"`
}
