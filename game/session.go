// Package game holds the client-side state of a game against the move
// service: the board, the current selection, and the turn gate that keeps
// exactly one remote round trip in flight.
package game

import (
	"fmt"

	"go.uber.org/zap"

	"termchess/engine"
	"termchess/fen"
	"termchess/types"
)

// HumanSide is the color controlled from the keyboard.
const HumanSide = types.White

// EngineSide is the color played by the move service.
const EngineSide = types.Black

// Phase is the position of a session in the move/reply cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidatingMove
	PhaseApplyingMove
	PhaseRequestingAI
	PhaseApplyingAI
	PhaseGameOver
)

var phaseNames = [...]string{"idle", "validating-move", "applying-move", "requesting-ai", "applying-ai", "game-over"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Awaiting returns true while a remote request is outstanding or its result
// is being applied.
func (p Phase) Awaiting() bool {
	switch p {
	case PhaseValidatingMove, PhaseApplyingMove, PhaseRequestingAI, PhaseApplyingAI:
		return true
	}
	return false
}

// PlayedMove is one applied ply.
type PlayedMove struct {
	Ply  int
	Side types.Color
	// Move is nil when the service only sent a position and the move could
	// not be read off the difference.
	Move     *types.Move
	Position string
}

// Session is the selection/turn state machine. It is not safe for
// concurrent use; all calls must come from the goroutine that owns the UI.
type Session struct {
	board    types.Board
	selected types.Square
	hasSel   bool
	phase    Phase
	notice   string
	epoch    uint64
	pending  types.Move
	history  []PlayedMove
	log      *zap.Logger
}

// NewSession creates a session at the start position.
func NewSession(log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{log: log}
	s.Reset()
	return s
}

// Reset returns to the start position and drops any selection, notice and
// game-over state. Results of requests issued before the reset are ignored.
func (s *Session) Reset() {
	s.board = fen.MustDecode(fen.StartPosition)
	s.hasSel = false
	s.phase = PhaseIdle
	s.notice = ""
	s.pending = types.Move{}
	s.history = nil
	s.epoch++
	s.log.Info("session reset", zap.Uint64("epoch", s.epoch))
}

// Epoch identifies the current game. It changes on every Reset.
func (s *Session) Epoch() uint64 {
	return s.epoch
}

// Board returns a copy of the board.
func (s *Session) Board() types.Board {
	return s.board
}

// Position returns the board as a FEN placement field.
func (s *Session) Position() string {
	return fen.Encode(s.board)
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// AwaitingRemote returns true while board-mutating input is blocked on the service.
func (s *Session) AwaitingRemote() bool {
	return s.phase.Awaiting()
}

// GameOver returns true once the engine has reported it has no move.
func (s *Session) GameOver() bool {
	return s.phase == PhaseGameOver
}

// Selected returns the selected square, if any.
func (s *Session) Selected() (types.Square, bool) {
	return s.selected, s.hasSel
}

// Notice returns the last error or rejection message.
func (s *Session) Notice() string {
	return s.notice
}

// History returns the applied plies in order.
func (s *Session) History() []PlayedMove {
	out := make([]PlayedMove, len(s.history))
	copy(out, s.history)
	return out
}

// Click handles a click on sq. It returns a candidate move and true when
// the click completes a from/to pair; the session is then awaiting the
// validation result.
func (s *Session) Click(sq types.Square) (types.Move, bool) {
	if !sq.Valid() {
		return types.Move{}, false
	}
	if s.phase == PhaseGameOver {
		s.log.Debug("click ignored, game over", zap.Stringer("square", sq))
		return types.Move{}, false
	}
	if s.phase.Awaiting() {
		s.log.Debug("click ignored, awaiting remote", zap.Stringer("square", sq), zap.Stringer("phase", s.phase))
		return types.Move{}, false
	}

	own := s.board.Get(sq).Belongs(HumanSide)

	if !s.hasSel {
		if own {
			s.selectSquare(sq)
		}
		return types.Move{}, false
	}

	if sq == s.selected {
		s.log.Debug("deselect", zap.Stringer("square", sq))
		s.hasSel = false
		return types.Move{}, false
	}

	// Own piece on the target: switch selection instead of asking the
	// service about a self-capture.
	if own {
		s.selectSquare(sq)
		return types.Move{}, false
	}

	m := types.Move{From: s.selected, To: sq}
	s.pending = m
	s.phase = PhaseValidatingMove
	s.notice = ""
	s.log.Info("candidate move", zap.Stringer("move", m), zap.Uint64("epoch", s.epoch))
	return m, true
}

func (s *Session) selectSquare(sq types.Square) {
	s.selected = sq
	s.hasSel = true
	s.notice = ""
	s.log.Debug("select", zap.Stringer("square", sq))
}

// stale reports whether a result issued under epoch for phase want should
// be dropped.
func (s *Session) stale(epoch uint64, want Phase) bool {
	if epoch != s.epoch || s.phase != want {
		s.log.Info("dropping stale result",
			zap.Uint64("epoch", epoch),
			zap.Uint64("current_epoch", s.epoch),
			zap.Stringer("phase", s.phase))
		return true
	}
	return false
}

// ApplyValidation applies the service's verdict on the pending move. It
// returns true when the move was applied and the engine should be asked for
// its reply; the session then stays in PhaseRequestingAI.
func (s *Session) ApplyValidation(epoch uint64, v engine.Validation, err error) bool {
	if s.stale(epoch, PhaseValidatingMove) {
		return false
	}
	s.phase = PhaseApplyingMove
	s.hasSel = false

	if err != nil {
		s.fail("Error validating move: " + err.Error())
		s.log.Warn("validation failed", zap.Stringer("move", s.pending), zap.Error(err))
		return false
	}

	if !v.Valid {
		s.notice = MsgInvalidMove
		s.phase = PhaseIdle
		s.log.Info("move rejected", zap.Stringer("move", s.pending))
		return false
	}

	next := s.board
	if v.Position != "" {
		b, err := fen.Decode(v.Position)
		if err != nil {
			s.fail(fmt.Sprintf("Error validating move: %v: %v", engine.ErrMalformedResponse, err))
			s.log.Warn("bad position from service", zap.String("fen", v.Position), zap.Error(err))
			return false
		}
		next = b
	} else {
		next.Relocate(s.pending.From, s.pending.To)
	}

	s.board = next
	m := s.pending
	s.push(HumanSide, &m)
	s.phase = PhaseRequestingAI
	s.log.Info("move accepted", zap.Stringer("move", m), zap.String("fen", s.Position()))
	return true
}

// BeginAI returns the position to send to the engine, or false if the
// request belongs to an earlier game or the session is not expecting one.
func (s *Session) BeginAI(epoch uint64) (string, bool) {
	if s.stale(epoch, PhaseRequestingAI) {
		return "", false
	}
	return s.Position(), true
}

// ApplyAI applies the engine's reply. A reply without a move ends the game;
// a failed request does not.
func (s *Session) ApplyAI(epoch uint64, r engine.Reply, err error) {
	if s.stale(epoch, PhaseRequestingAI) {
		return
	}
	s.phase = PhaseApplyingAI

	if err != nil {
		s.fail("Error communicating with engine: " + err.Error())
		s.log.Warn("engine request failed", zap.Error(err))
		return
	}

	if !r.HasMove() {
		s.phase = PhaseGameOver
		s.notice = ""
		s.log.Info("engine has no move, game over")
		return
	}

	if r.Position != "" {
		b, err := fen.Decode(r.Position)
		if err != nil {
			s.fail(fmt.Sprintf("Error communicating with engine: %v: %v", engine.ErrMalformedResponse, err))
			s.log.Warn("bad position from engine", zap.String("fen", r.Position), zap.Error(err))
			return
		}
		before := s.board
		s.board = b
		s.push(EngineSide, inferMove(before, b, EngineSide))
	} else {
		m := *r.Move
		s.board.Relocate(m.From, m.To)
		s.push(EngineSide, &m)
	}

	s.phase = PhaseIdle
	s.log.Info("engine moved", zap.String("fen", s.Position()))
}

// fail records an error notice and reopens the gate without touching the board.
func (s *Session) fail(msg string) {
	s.notice = msg
	s.hasSel = false
	s.phase = PhaseIdle
}

func (s *Session) push(side types.Color, m *types.Move) {
	s.history = append(s.history, PlayedMove{
		Ply:      len(s.history) + 1,
		Side:     side,
		Move:     m,
		Position: s.Position(),
	})
}

// inferMove reads the move side made off the difference between two
// boards. For castling the king's move is returned. It returns nil when the
// difference does not look like a single move.
func inferMove(before, after types.Board, side types.Color) *types.Move {
	var from, to []types.Square
	for row := 0; row < types.Size; row++ {
		for col := 0; col < types.Size; col++ {
			sq := types.Square{Row: row, Col: col}
			b, a := before.Get(sq), after.Get(sq)
			if b == a {
				continue
			}
			if b.Belongs(side) {
				from = append(from, sq)
			}
			if a.Belongs(side) {
				to = append(to, sq)
			}
		}
	}
	if len(from) == 1 && len(to) == 1 {
		return &types.Move{From: from[0], To: to[0]}
	}
	if len(from) == 2 && len(to) == 2 {
		m := types.Move{}
		found := 0
		for _, sq := range from {
			if before.Get(sq).Kind == types.King {
				m.From = sq
				found++
			}
		}
		for _, sq := range to {
			if after.Get(sq).Kind == types.King {
				m.To = sq
				found++
			}
		}
		if found == 2 {
			return &m
		}
	}
	return nil
}
