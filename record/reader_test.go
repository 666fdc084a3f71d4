package record

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"termchess/fen"
	"termchess/game"
	"termchess/types"
)

func writeRecord(t *testing.T, dir string, plies ...game.PlayedMove) *GameRecord {
	t.Helper()
	rec, err := NewGameRecord(dir, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	for _, p := range plies {
		if err := rec.AddMove(p); err != nil {
			t.Fatalf("AddMove: %v", err)
		}
	}
	rec.Close()
	return rec
}

func TestParseHeader(t *testing.T) {
	m := types.Move{From: sq("e2"), To: sq("e4")}
	rec := writeRecord(t, t.TempDir(),
		game.PlayedMove{Ply: 1, Side: types.White, Move: &m, Position: afterE4},
		game.PlayedMove{Ply: 2, Side: types.Black, Position: afterE5},
	)

	info, err := ParseHeader(rec.FilePath)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if info.Session != rec.Session || info.Black != "engine" || info.Result != ResultOngoing {
		t.Errorf("header = %+v", info)
	}
	if info.MoveCount != 2 {
		t.Errorf("MoveCount = %d, want 2", info.MoveCount)
	}
	if info.FinalPosition != afterE5 {
		t.Errorf("FinalPosition = %q", info.FinalPosition)
	}
}

func TestParseHeaderEmptyGame(t *testing.T) {
	rec := writeRecord(t, t.TempDir())
	info, err := ParseHeader(rec.FilePath)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if info.MoveCount != 0 || info.FinalPosition != fen.StartPosition {
		t.Errorf("info = %+v", info)
	}
}

func TestParseMoves(t *testing.T) {
	m := types.Move{From: sq("g1"), To: sq("f3")}
	rec := writeRecord(t, t.TempDir(),
		game.PlayedMove{Ply: 1, Side: types.White, Move: &m, Position: "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R"},
	)
	plies, err := ParseMoves(rec.FilePath)
	if err != nil {
		t.Fatalf("ParseMoves: %v", err)
	}
	if len(plies) != 1 || plies[0].Move == nil || *plies[0].Move != m || plies[0].Side != types.White {
		t.Errorf("plies = %+v", plies)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad tag", "[Game termchess]\n"},
		{"short ply", "[Game \"termchess\"]\n\n1 w e2-e4\n"},
		{"bad side", "1 x e2-e4 " + afterE4 + "\n"},
		{"bad square", "1 w e9-e4 " + afterE4 + "\n"},
		{"bad position", "1 w e2-e4 rnbqkbnr/8\n"},
	}
	dir := t.TempDir()
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name+Ext)
		if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ParseHeader(path); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: err = %v, want ErrMalformed", tt.name, err)
		}
	}
}

func TestListGames(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644)
	os.WriteFile(filepath.Join(dir, "zz_broken"+Ext), []byte("1 w\n"), 0644)

	games, err := ListGames(dir)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	games, err = ListGames(filepath.Join(dir, "missing"))
	if err != nil || games != nil {
		t.Errorf("missing dir: %v, %v", games, err)
	}
}
