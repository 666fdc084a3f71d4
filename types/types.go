// Package types contains shared data structures for termchess.
package types

import "fmt"

// Size is the number of rows and columns on a chess board.
const Size = 8

// Color is the side a piece belongs to.
type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Kind is the type of a piece. NoKind marks an empty square.
type Kind int

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Piece is the occupant of a square. The zero value is an empty square.
type Piece struct {
	Kind  Kind
	Color Color
}

// NoPiece is the empty occupant.
var NoPiece = Piece{}

// NewPiece returns a piece of the given color and kind.
func NewPiece(c Color, k Kind) Piece {
	return Piece{Kind: k, Color: c}
}

// IsEmpty returns true if the piece represents an empty square.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Belongs returns true if p is a real piece of color c.
func (p Piece) Belongs(c Color) bool {
	return !p.IsEmpty() && p.Color == c
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Color, p.Kind)
}

// Square is a (row, column) coordinate. Row 0 is Black's home rank.
type Square struct {
	Row int
	Col int
}

// Valid returns true if both coordinates are on the board.
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// String renders the square in algebraic notation: (6, 4) -> "e2".
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+rune(s.Col), Size-s.Row)
}

// Move is a from/to pair. Special moves are not represented.
type Move struct {
	From Square
	To   Square
}

// Valid returns true if both endpoints are on the board and differ.
func (m Move) Valid() bool {
	return m.From.Valid() && m.To.Valid() && m.From != m.To
}

func (m Move) String() string {
	return m.From.String() + "-" + m.To.String()
}

// Board is the 8x8 grid of occupants, indexed as Board[row][col].
type Board [Size][Size]Piece

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// Get returns the occupant of sq.
func (b *Board) Get(sq Square) Piece {
	return b[sq.Row][sq.Col]
}

// Set places p on sq, replacing whatever was there.
func (b *Board) Set(sq Square, p Piece) {
	b[sq.Row][sq.Col] = p
}

// Relocate moves the occupant of from to to and clears from.
// Anything on to is overwritten.
func (b *Board) Relocate(from, to Square) {
	p := b.Get(from)
	b.Set(to, p)
	b.Set(from, NoPiece)
}

// Count returns the number of occupied squares.
func (b *Board) Count() int {
	n := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !b[row][col].IsEmpty() {
				n++
			}
		}
	}
	return n
}
