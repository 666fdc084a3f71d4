// Package record writes and reads termchess game records.
//
// A record is a plain text file: a block of [Tag "value"] header lines, a
// blank line, then one line per ply of the form
//
//	<ply> <w|b> <from-to|--> <placement>
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"termchess/fen"
	"termchess/game"
	"termchess/types"
)

// Ext is the file extension of game records.
const Ext = ".tcr"

// ResultOngoing is the result tag of an unfinished game.
const ResultOngoing = "*"

// GameRecord tracks a game in progress and rewrites its file on every change.
type GameRecord struct {
	FilePath string
	Session  string
	Date     string
	White    string
	Black    string
	Result   string
	plies    []string
	file     *os.File
}

// NewGameRecord creates a new record file in dir and writes the header.
// engine names the move service the human is playing against.
func NewGameRecord(dir, engine string) (*GameRecord, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	now := time.Now()
	id := uuid.New()
	filename := fmt.Sprintf("%s_%s%s", now.Format("2006-01-02_150405"), id.String()[:8], Ext)
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}

	rec := &GameRecord{
		FilePath: path,
		Session:  id.String(),
		Date:     now.Format("2006-01-02"),
		White:    "Player",
		Black:    engine,
		Result:   ResultOngoing,
		file:     f,
	}

	if err := rec.flush(); err != nil {
		f.Close()
		return nil, err
	}
	return rec, nil
}

// AddMove appends a ply to the record.
func (r *GameRecord) AddMove(m game.PlayedMove) error {
	r.plies = append(r.plies, formatPly(m))
	return r.flush()
}

// SetResult sets the result tag. An empty result marks the game as ongoing.
func (r *GameRecord) SetResult(result string) error {
	result = strings.TrimSpace(result)
	if result == "" {
		result = ResultOngoing
	}
	r.Result = result
	return r.flush()
}

// Close performs a final flush and closes the file handle.
func (r *GameRecord) Close() {
	if r.file == nil {
		return
	}
	r.flush()
	r.file.Close()
	r.file = nil
}

func formatPly(m game.PlayedMove) string {
	side := "w"
	if m.Side == types.Black {
		side = "b"
	}
	move := "--"
	if m.Move != nil {
		move = m.Move.String()
	}
	return fmt.Sprintf("%d %s %s %s", m.Ply, side, move, m.Position)
}

// flush rewrites the complete file from scratch.
func (r *GameRecord) flush() error {
	if r.file == nil {
		return fmt.Errorf("file already closed")
	}

	var b strings.Builder
	writeTag(&b, "Game", "termchess")
	writeTag(&b, "Session", r.Session)
	writeTag(&b, "Date", r.Date)
	writeTag(&b, "White", r.White)
	writeTag(&b, "Black", r.Black)
	writeTag(&b, "Start", fen.StartPosition)
	writeTag(&b, "Result", r.Result)
	b.WriteString("\n")
	for _, p := range r.plies {
		b.WriteString(p)
		b.WriteString("\n")
	}

	if _, err := r.file.Seek(0, 0); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if _, err := r.file.WriteString(b.String()); err != nil {
		return err
	}
	return r.file.Sync()
}

func writeTag(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "[%s %q]\n", key, value)
}
