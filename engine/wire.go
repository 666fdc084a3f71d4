package engine

import (
	"encoding/json"
	"fmt"

	"termchess/types"
)

// WireMove is the JSON move object shared by both endpoints.
type WireMove struct {
	FromRow int `json:"FromRow"`
	FromCol int `json:"FromCol"`
	ToRow   int `json:"ToRow"`
	ToCol   int `json:"ToCol"`
}

// ToWire converts a move to its wire form.
func ToWire(m types.Move) WireMove {
	return WireMove{
		FromRow: m.From.Row,
		FromCol: m.From.Col,
		ToRow:   m.To.Row,
		ToCol:   m.To.Col,
	}
}

// Move converts the wire form back to a move.
func (w WireMove) Move() types.Move {
	return types.Move{
		From: types.Square{Row: w.FromRow, Col: w.FromCol},
		To:   types.Square{Row: w.ToRow, Col: w.ToCol},
	}
}

// ValidateRequest is the body of a validation request.
type ValidateRequest struct {
	FEN  string   `json:"fen"`
	Move WireMove `json:"move"`
}

// MoveRequest is the body of an engine move request.
type MoveRequest struct {
	FEN string `json:"fen"`
}

// ValidateResponse is the body of a validation response.
type ValidateResponse struct {
	Valid  bool    `json:"valid"`
	NewFEN *string `json:"newFen,omitempty"`
}

// MoveResponse is the body of an engine move response. Two shapes exist in
// the wild: {valid, newFen} and a bare move object. Both decode into this
// struct; Reply sorts out which one was sent.
type MoveResponse struct {
	Valid   *bool   `json:"valid,omitempty"`
	NewFEN  *string `json:"newFen,omitempty"`
	FromRow *int    `json:"FromRow,omitempty"`
	FromCol *int    `json:"FromCol,omitempty"`
	ToRow   *int    `json:"ToRow,omitempty"`
	ToCol   *int    `json:"ToCol,omitempty"`
}

// Validation converts the response, rejecting an empty newFen.
func (r ValidateResponse) Validation() (Validation, error) {
	v := Validation{Valid: r.Valid}
	if r.NewFEN != nil {
		if *r.NewFEN == "" {
			return Validation{}, fmt.Errorf("%w: empty newFen", ErrMalformedResponse)
		}
		v.Position = *r.NewFEN
	}
	return v, nil
}

// Reply converts the response. newFen wins over a move object, an explicit
// valid:false means no move, and a bare move from a square to itself (what
// older services send when they find nothing) also means no move.
func (r MoveResponse) Reply() (Reply, error) {
	if r.Valid != nil && !*r.Valid {
		return Reply{}, nil
	}
	if r.NewFEN != nil && *r.NewFEN != "" {
		return Reply{Position: *r.NewFEN}, nil
	}
	coords := []*int{r.FromRow, r.FromCol, r.ToRow, r.ToCol}
	present := 0
	for _, c := range coords {
		if c != nil {
			present++
		}
	}
	switch present {
	case 0:
		return Reply{}, nil
	case len(coords):
	default:
		return Reply{}, fmt.Errorf("%w: partial move object", ErrMalformedResponse)
	}

	m := WireMove{FromRow: *r.FromRow, FromCol: *r.FromCol, ToRow: *r.ToRow, ToCol: *r.ToCol}.Move()
	if m.From == m.To {
		return Reply{}, nil
	}
	if !m.Valid() {
		return Reply{}, fmt.Errorf("%w: move %v out of range", ErrMalformedResponse, m)
	}
	return Reply{Move: &m}, nil
}

// DecodeMoveResponse parses an engine move response body.
func DecodeMoveResponse(data []byte) (Reply, error) {
	var r MoveResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return r.Reply()
}

// DecodeValidateResponse parses a validation response body.
func DecodeValidateResponse(data []byte) (Validation, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Validation{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, ok := raw["valid"]; !ok {
		return Validation{}, fmt.Errorf("%w: missing valid field", ErrMalformedResponse)
	}
	var r ValidateResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return Validation{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return r.Validation()
}
