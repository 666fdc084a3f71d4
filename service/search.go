package service

import (
	"sort"

	"github.com/notnil/chess"
)

// DefaultDepth is the search depth the service plays at.
const DefaultDepth = 3

const (
	mateScore = 1000000
	infinity  = 2 * mateScore
)

var pieceValue = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

// Piece-square tables from White's side, row 0 is rank 8.
var pieceSquare = map[chess.PieceType][8][8]int{
	chess.Pawn: {
		{0, 0, 0, 0, 0, 0, 0, 0},
		{50, 50, 50, 50, 50, 50, 50, 50},
		{10, 10, 20, 30, 30, 20, 10, 10},
		{5, 5, 10, 25, 25, 10, 5, 5},
		{0, 0, 0, 20, 20, 0, 0, 0},
		{5, -5, -10, 0, 0, -10, -5, 5},
		{5, 10, 10, -20, -20, 10, 10, 5},
		{0, 0, 0, 0, 0, 0, 0, 0},
	},
	chess.Knight: {
		{-50, -40, -30, -30, -30, -30, -40, -50},
		{-40, -20, 0, 0, 0, 0, -20, -40},
		{-30, 0, 10, 15, 15, 10, 0, -30},
		{-30, 5, 15, 20, 20, 15, 5, -30},
		{-30, 0, 15, 20, 20, 15, 0, -30},
		{-30, 5, 10, 15, 15, 10, 5, -30},
		{-40, -20, 0, 5, 5, 0, -20, -40},
		{-50, -40, -30, -30, -30, -30, -40, -50},
	},
	chess.Bishop: {
		{-20, -10, -10, -10, -10, -10, -10, -20},
		{-10, 0, 0, 0, 0, 0, 0, -10},
		{-10, 0, 5, 10, 10, 5, 0, -10},
		{-10, 5, 5, 10, 10, 5, 5, -10},
		{-10, 0, 10, 10, 10, 10, 0, -10},
		{-10, 10, 10, 10, 10, 10, 10, -10},
		{-10, 5, 0, 0, 0, 0, 5, -10},
		{-20, -10, -10, -10, -10, -10, -10, -20},
	},
	chess.Rook: {
		{0, 0, 0, 0, 0, 0, 0, 0},
		{5, 10, 10, 10, 10, 10, 10, 5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{0, 0, 0, 5, 5, 0, 0, 0},
	},
	chess.Queen: {
		{-20, -10, -10, -5, -5, -10, -10, -20},
		{-10, 0, 0, 0, 0, 0, 0, -10},
		{-10, 0, 5, 5, 5, 5, 0, -10},
		{-5, 0, 5, 5, 5, 5, 0, -5},
		{0, 0, 5, 5, 5, 5, 0, -5},
		{-10, 5, 5, 5, 5, 5, 0, -10},
		{-10, 0, 5, 0, 0, 0, 0, -10},
		{-20, -10, -10, -5, -5, -10, -10, -20},
	},
	chess.King: {
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-30, -40, -40, -50, -50, -40, -40, -30},
		{-20, -30, -30, -40, -40, -30, -30, -20},
		{-10, -20, -20, -20, -20, -20, -20, -10},
		{20, 20, 0, 0, 0, 0, 20, 20},
		{20, 30, 10, 0, 0, 10, 30, 20},
	},
}

// Search picks moves by negamax with alpha-beta pruning to a fixed depth.
// Leaves are scored by material plus piece-square tables.
type Search struct {
	depth int
}

// NewSearch returns a Search that looks depth plies ahead.
func NewSearch(depth int) *Search {
	return &Search{depth: max(depth, 1)}
}

// Choose returns the best of moves, the legal moves in pos. Ties go to the
// move ordered first.
func (s *Search) Choose(pos *chess.Position, moves []*chess.Move) *chess.Move {
	moves = ordered(pos, moves)
	best, alpha := moves[0], -infinity
	for _, m := range moves {
		score := -s.negamax(pos.Update(m), s.depth-1, 1, -infinity, -alpha)
		if score > alpha {
			best, alpha = m, score
		}
	}
	return best
}

func (s *Search) negamax(pos *chess.Position, depth, ply, alpha, beta int) int {
	if depth == 0 {
		return evaluate(pos)
	}
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		if pos.Status() == chess.Checkmate {
			// Nearer mates score higher for the winner.
			return -mateScore + ply
		}
		return 0
	}
	for _, m := range ordered(pos, moves) {
		if m.Promo() != chess.NoPieceType && m.Promo() != chess.Queen {
			continue
		}
		score := -s.negamax(pos.Update(m), depth-1, ply+1, -beta, -alpha)
		if score >= beta {
			return beta
		}
		alpha = max(alpha, score)
	}
	return alpha
}

// evaluate scores pos for the side to move.
func evaluate(pos *chess.Position) int {
	score := 0
	for sq, p := range pos.Board().SquareMap() {
		rank, file := int(sq.Rank()), int(sq.File())
		if p.Color() == chess.White {
			score += pieceValue[p.Type()] + pieceSquare[p.Type()][7-rank][file]
		} else {
			score -= pieceValue[p.Type()] + pieceSquare[p.Type()][rank][file]
		}
	}
	if pos.Turn() == chess.Black {
		return -score
	}
	return score
}

// ordered returns a copy of moves with captures and promotions first,
// most valuable victim and least valuable attacker leading.
func ordered(pos *chess.Position, moves []*chess.Move) []*chess.Move {
	board := pos.Board()
	rank := func(m *chess.Move) int {
		r := 0
		if m.HasTag(chess.Capture) {
			victim := pieceValue[board.Piece(m.S2()).Type()]
			if m.HasTag(chess.EnPassant) {
				victim = pieceValue[chess.Pawn]
			}
			r += 10*victim - pieceValue[board.Piece(m.S1()).Type()]
		}
		if m.Promo() != chess.NoPieceType {
			r += 10 * pieceValue[m.Promo()]
		}
		return r
	}
	out := append([]*chess.Move(nil), moves...)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) > rank(out[j])
	})
	return out
}
