// Package service is a reference move service: it validates White's moves
// and plays Black using github.com/notnil/chess for move generation.
package service

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/notnil/chess"

	"termchess/fen"
	"termchess/types"
)

// Sentinel errors; the transport layer maps these to HTTP codes.
var (
	ErrBadPosition = errors.New("bad_position")
	ErrBadMove     = errors.New("bad_move")
)

// Picker chooses one of n legal moves. It must return a value in [0, n).
type Picker func(n int) int

// RandomPicker picks uniformly.
func RandomPicker(n int) int {
	return rand.Intn(n)
}

// chooser selects Black's reply among moves, the legal moves in pos.
type chooser func(pos *chess.Position, moves []*chess.Move) *chess.Move

// Rules answers validation and move requests for placement-only positions.
type Rules struct {
	choose chooser
}

// NewRules returns Rules using pick to choose Black's reply. A nil pick
// means RandomPicker.
func NewRules(pick Picker) *Rules {
	if pick == nil {
		pick = RandomPicker
	}
	return &Rules{choose: func(_ *chess.Position, moves []*chess.Move) *chess.Move {
		return moves[pick(len(moves))]
	}}
}

// NewSearchRules returns Rules that answer with the best move found by a
// depth-limited search. Depths below one are raised to one.
func NewSearchRules(depth int) *Rules {
	s := NewSearch(depth)
	return &Rules{choose: s.Choose}
}

// Validate checks whether White may play m in placement. When the move is
// legal it returns the resulting placement. A pawn reaching the last rank
// promotes to a queen.
func (r *Rules) Validate(placement string, m types.Move) (bool, string, error) {
	if !m.From.Valid() || !m.To.Valid() {
		return false, "", fmt.Errorf("%w: %v out of range", ErrBadMove, m)
	}
	g, err := newGame(placement, types.White)
	if err != nil {
		return false, "", err
	}
	from, to := toSquare(m.From), toSquare(m.To)
	for _, cand := range g.ValidMoves() {
		if cand.S1() != from || cand.S2() != to {
			continue
		}
		if cand.Promo() != chess.NoPieceType && cand.Promo() != chess.Queen {
			continue
		}
		if err := g.Move(cand); err != nil {
			return false, "", err
		}
		return true, g.Position().Board().String(), nil
	}
	return false, "", nil
}

// Reply picks Black's move in placement. It returns false when Black has no
// legal move.
func (r *Rules) Reply(placement string) (types.Move, string, bool, error) {
	g, err := newGame(placement, types.Black)
	if err != nil {
		return types.Move{}, "", false, err
	}
	var moves []*chess.Move
	for _, m := range g.ValidMoves() {
		if m.Promo() == chess.NoPieceType || m.Promo() == chess.Queen {
			moves = append(moves, m)
		}
	}
	if len(moves) == 0 {
		return types.Move{}, "", false, nil
	}
	choice := r.choose(g.Position(), moves)
	if err := g.Move(choice); err != nil {
		return types.Move{}, "", false, err
	}
	m := types.Move{From: fromSquare(choice.S1()), To: fromSquare(choice.S2())}
	return m, g.Position().Board().String(), true, nil
}

func newGame(placement string, turn types.Color) (*chess.Game, error) {
	full, err := CompleteFEN(placement, turn)
	if err != nil {
		return nil, err
	}
	opt, err := chess.FEN(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPosition, err)
	}
	return chess.NewGame(opt, chess.UseNotation(chess.UCINotation{})), nil
}

// CompleteFEN turns a placement field into a full FEN with turn to move.
// Castling rights are granted wherever king and rook stand on their home
// squares; there is never an en passant square.
func CompleteFEN(placement string, turn types.Color) (string, error) {
	b, err := fen.Decode(placement)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPosition, err)
	}
	wk := countPiece(b, types.NewPiece(types.White, types.King))
	bk := countPiece(b, types.NewPiece(types.Black, types.King))
	if wk != 1 || bk != 1 {
		return "", fmt.Errorf("%w: need one king per side, have %d white and %d black", ErrBadPosition, wk, bk)
	}
	if kingAttacked(b, turn.Opponent()) {
		return "", fmt.Errorf("%w: side not to move is in check", ErrBadPosition)
	}

	side := "w"
	if turn == types.Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s - 0 1", fen.Encode(b), side, castlingRights(b)), nil
}

// kingAttacked reports whether c's king is attacked by the other side.
func kingAttacked(b types.Board, c types.Color) bool {
	var king types.Square
	for row := range b {
		for col, p := range b[row] {
			if p == types.NewPiece(c, types.King) {
				king = types.Square{Row: row, Col: col}
			}
		}
	}
	enemy := c.Opponent()
	is := func(row, col int, kinds ...types.Kind) bool {
		sq := types.Square{Row: row, Col: col}
		if !sq.Valid() {
			return false
		}
		for _, k := range kinds {
			if b.Get(sq) == types.NewPiece(enemy, k) {
				return true
			}
		}
		return false
	}

	// White pawns capture toward row 0, so they stand one row below the king.
	pawnRow := king.Row + 1
	if enemy == types.Black {
		pawnRow = king.Row - 1
	}
	if is(pawnRow, king.Col-1, types.Pawn) || is(pawnRow, king.Col+1, types.Pawn) {
		return true
	}
	for _, d := range [][2]int{{1, 2}, {2, 1}, {-1, 2}, {-2, 1}, {1, -2}, {2, -1}, {-1, -2}, {-2, -1}} {
		if is(king.Row+d[0], king.Col+d[1], types.Knight) {
			return true
		}
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if (dr != 0 || dc != 0) && is(king.Row+dr, king.Col+dc, types.King) {
				return true
			}
		}
	}
	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		slider := types.Rook
		if d[0] != 0 && d[1] != 0 {
			slider = types.Bishop
		}
		for row, col := king.Row+d[0], king.Col+d[1]; ; row, col = row+d[0], col+d[1] {
			sq := types.Square{Row: row, Col: col}
			if !sq.Valid() {
				break
			}
			if b.Get(sq).IsEmpty() {
				continue
			}
			if is(row, col, slider, types.Queen) {
				return true
			}
			break
		}
	}
	return false
}

func countPiece(b types.Board, p types.Piece) int {
	n := 0
	for row := range b {
		for _, q := range b[row] {
			if q == p {
				n++
			}
		}
	}
	return n
}

func castlingRights(b types.Board) string {
	at := func(row, col int, k types.Kind, c types.Color) bool {
		return b.Get(types.Square{Row: row, Col: col}) == types.NewPiece(c, k)
	}
	rights := ""
	if at(7, 4, types.King, types.White) {
		if at(7, 7, types.Rook, types.White) {
			rights += "K"
		}
		if at(7, 0, types.Rook, types.White) {
			rights += "Q"
		}
	}
	if at(0, 4, types.King, types.Black) {
		if at(0, 7, types.Rook, types.Black) {
			rights += "k"
		}
		if at(0, 0, types.Rook, types.Black) {
			rights += "q"
		}
	}
	if rights == "" {
		return "-"
	}
	return rights
}

// toSquare maps a board square (row 0 is rank 8) to the library's a1=0 layout.
func toSquare(sq types.Square) chess.Square {
	return chess.Square((types.Size-1-sq.Row)*8 + sq.Col)
}

func fromSquare(sq chess.Square) types.Square {
	return types.Square{Row: types.Size - 1 - int(sq.Rank()), Col: int(sq.File())}
}
