// Package engine defines the boundary to the remote move service.
package engine

import (
	"context"
	"errors"

	"termchess/types"
)

// ErrMalformedResponse is returned when the service answers with something
// that does not match the protocol.
var ErrMalformedResponse = errors.New("malformed response")

// MoveService validates human moves and generates replies for the engine side.
// Positions are FEN placement fields.
type MoveService interface {
	// ValidateMove asks whether m is legal in position.
	ValidateMove(ctx context.Context, position string, m types.Move) (Validation, error)

	// RequestMove asks the engine for its reply in position.
	RequestMove(ctx context.Context, position string) (Reply, error)
}

// Validation is the answer to a ValidateMove call.
type Validation struct {
	Valid bool
	// Position is the placement after the move when the service supplied one.
	Position string
}

// Reply is the answer to a RequestMove call. At most one of Position and
// Move is meaningful; Position takes precedence. A reply with neither means
// the engine has no legal move.
type Reply struct {
	Position string
	Move     *types.Move
}

// HasMove returns true if the engine played something.
func (r Reply) HasMove() bool {
	return r.Position != "" || r.Move != nil
}

// Config holds settings for connecting to a move service.
type Config struct {
	BaseURL      string
	ValidatePath string
	MovePath     string
}

// DefaultConfig returns the endpoints served by cmd/chess-service.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8080",
		ValidatePath: "/validate_move",
		MovePath:     "/get_move",
	}
}
