package entity

type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhaseMyTurn       Phase = "my_turn"
	PhaseOpponentTurn Phase = "opponent_turn"
	PhaseFinished     Phase = "finished"
)

// Session - the local player's view of the current game. It is never persisted.
type Session struct {
	Symbol        Symbol
	IsPlayerTurn  bool
	IsGameStarted bool
	Outcome       Outcome
}

// IsBlocked - reports whether board input must be refused.
func (that Session) IsBlocked() bool {
	return !that.IsGameStarted || !that.IsPlayerTurn
}

func (that Session) Phase() Phase {
	switch {
	case !that.IsGameStarted:
		return PhaseWaiting
	case that.Outcome.IsDecided():
		return PhaseFinished
	case that.IsPlayerTurn:
		return PhaseMyTurn
	default:
		return PhaseOpponentTurn
	}
}
