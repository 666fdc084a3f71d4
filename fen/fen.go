// Package fen converts boards to and from the piece-placement field of
// Forsyth-Edwards Notation.
//
// Only the placement field is handled: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR".
// Row 0 of the board is the first rank listed (Black's home rank).
package fen

import (
	"fmt"
	"strings"

	"termchess/types"
)

// StartPosition is the placement field of the standard initial position.
const StartPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Error describes why a placement string could not be decoded.
type Error struct {
	Placement string
	Row       int // -1 when the error is not tied to a row
	Reason    string
}

func (e *Error) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("fen %q: %s", e.Placement, e.Reason)
	}
	return fmt.Sprintf("fen %q: row %d: %s", e.Placement, e.Row+1, e.Reason)
}

var letterToKind = map[rune]types.Kind{
	'p': types.Pawn,
	'n': types.Knight,
	'b': types.Bishop,
	'r': types.Rook,
	'q': types.Queen,
	'k': types.King,
}

var kindToLetter = map[types.Kind]rune{
	types.Pawn:   'p',
	types.Knight: 'n',
	types.Bishop: 'b',
	types.Rook:   'r',
	types.Queen:  'q',
	types.King:   'k',
}

// PieceFromLetter converts a FEN piece letter. Uppercase is White.
func PieceFromLetter(r rune) (types.Piece, bool) {
	color := types.Black
	lower := r
	if r >= 'A' && r <= 'Z' {
		color = types.White
		lower = r - 'A' + 'a'
	}
	kind, ok := letterToKind[lower]
	if !ok {
		return types.NoPiece, false
	}
	return types.NewPiece(color, kind), true
}

// Letter returns the FEN letter of p, or 0 for an empty square.
func Letter(p types.Piece) rune {
	r, ok := kindToLetter[p.Kind]
	if !ok {
		return 0
	}
	if p.Color == types.White {
		r = r - 'a' + 'A'
	}
	return r
}

// Encode renders the board as a placement field. Runs of empty squares
// collapse to their count and rows are separated by '/'.
func Encode(b types.Board) string {
	var sb strings.Builder
	for row := 0; row < types.Size; row++ {
		empty := 0
		for col := 0; col < types.Size; col++ {
			p := b[row][col]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteRune(Letter(p))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < types.Size-1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// Decode parses a placement field. Anything after the first space (side to
// move, castling rights, ...) is ignored. Every row must describe exactly
// eight squares.
func Decode(s string) (types.Board, error) {
	placement := strings.TrimSpace(s)
	if i := strings.IndexByte(placement, ' '); i >= 0 {
		placement = placement[:i]
	}

	board := types.NewBoard()
	rows := strings.Split(placement, "/")
	if len(rows) != types.Size {
		return board, &Error{Placement: placement, Row: -1, Reason: fmt.Sprintf("expected %d rows, got %d", types.Size, len(rows))}
	}

	for rowIdx, row := range rows {
		col := 0
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				if col > types.Size {
					return board, &Error{Placement: placement, Row: rowIdx, Reason: "too many squares"}
				}
				continue
			}
			piece, ok := PieceFromLetter(ch)
			if !ok {
				return board, &Error{Placement: placement, Row: rowIdx, Reason: fmt.Sprintf("invalid piece %q", ch)}
			}
			if col >= types.Size {
				return board, &Error{Placement: placement, Row: rowIdx, Reason: "too many squares"}
			}
			board[rowIdx][col] = piece
			col++
		}
		if col != types.Size {
			return board, &Error{Placement: placement, Row: rowIdx, Reason: fmt.Sprintf("expected %d squares, got %d", types.Size, col)}
		}
	}
	return board, nil
}

// MustDecode is like Decode but panics on malformed input. Intended for
// constants such as StartPosition.
func MustDecode(s string) types.Board {
	b, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return b
}
