package game

import "termchess/types"

// Status line messages.
const (
	MsgYourMove    = "White to move"
	MsgValidating  = "Validating move..."
	MsgThinking    = "Black is thinking..."
	MsgInvalidMove = "Invalid Move! Try again."
	MsgGameOver    = "Game Over!"
)

// Snapshot is an immutable copy of everything the view needs.
type Snapshot struct {
	Board        types.Board
	Selected     types.Square
	HasSelection bool
	Phase        Phase
	Notice       string
	History      []PlayedMove
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Board:        s.board,
		Selected:     s.selected,
		HasSelection: s.hasSel,
		Phase:        s.phase,
		Notice:       s.notice,
		History:      s.History(),
	}
}

// AwaitingRemote mirrors Session.AwaitingRemote.
func (s Snapshot) AwaitingRemote() bool {
	return s.Phase.Awaiting()
}

// GameOver mirrors Session.GameOver.
func (s Snapshot) GameOver() bool {
	return s.Phase == PhaseGameOver
}

// IsSelected returns true if sq is the selected square.
func (s Snapshot) IsSelected(sq types.Square) bool {
	return s.HasSelection && s.Selected == sq
}

// Status returns the status line. Game over beats a pending request, which
// beats a notice, which beats the default prompt.
func (s Snapshot) Status() string {
	switch {
	case s.GameOver():
		return MsgGameOver
	case s.Phase == PhaseValidatingMove || s.Phase == PhaseApplyingMove:
		return MsgValidating
	case s.AwaitingRemote():
		return MsgThinking
	case s.Notice != "":
		return s.Notice
	default:
		return MsgYourMove
	}
}
