package battle

type State string

const (
	StateWaiting    State = "waiting"
	StateSetup      State = "setup"
	StateGenerating State = "generating"
	StateBattle     State = "battle"
	StateJudging    State = "judging"
	StateResult     State = "result"
	StateClosed     State = "closed"
)

var transitions = map[State][]State{
	StateWaiting:    {StateSetup, StateClosed},
	StateSetup:      {StateGenerating, StateClosed},
	StateGenerating: {StateBattle, StateClosed},
	StateBattle:     {StateJudging, StateClosed},
	StateJudging:    {StateResult, StateClosed},
	StateResult:     {StateSetup, StateClosed},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
