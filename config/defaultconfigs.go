package config

import "termchess/engine"

var DefaultConfig Config
var DefaultTheme Theme

// LetterSymbols draws pieces as FEN letters, for terminals without chess glyphs.
var LetterSymbols = ConfigSymbols{
	White: PieceSymbols{King: 'K', Queen: 'Q', Rook: 'R', Bishop: 'B', Knight: 'N', Pawn: 'P'},
	Black: PieceSymbols{King: 'k', Queen: 'q', Rook: 'r', Bishop: 'b', Knight: 'n', Pawn: 'p'},
	Empty: ' ',
}

func init() {
	DefaultTheme = Theme{
		DrawCursorBackground: true,
		ShowCoordinates:      true,
		Colors: ConfigColors{
			LightSquare: 180,
			DarkSquare:  137,
			WhitePiece:  255,
			BlackPiece:  232,
			CursorBG:    4,
			SelectedBG:  2,
			Coordinates: 244,
		},
		Symbols: ConfigSymbols{
			White: PieceSymbols{King: '♚', Queen: '♛', Rook: '♜', Bishop: '♝', Knight: '♞', Pawn: '♟'},
			Black: PieceSymbols{King: '♚', Queen: '♛', Rook: '♜', Bishop: '♝', Knight: '♞', Pawn: '♟'},
			Empty: ' ',
		},
	}

	svc := engine.DefaultConfig()
	DefaultConfig = Config{
		Theme: DefaultTheme,
		Service: ServiceConfig{
			BaseURL:          svc.BaseURL,
			ValidatePath:     svc.ValidatePath,
			MovePath:         svc.MovePath,
			RequestTimeoutMs: 0,
			AIDelayMs:        300,
		},
		Record: RecordConfig{
			Enabled: true,
		},
	}
}
