package record

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"termchess/fen"
	"termchess/game"
	"termchess/types"
)

// ErrMalformed is returned for record lines that cannot be parsed.
var ErrMalformed = errors.New("malformed record")

// GameInfo holds metadata parsed from a record file.
type GameInfo struct {
	FilePath      string
	FileName      string
	Session       string
	Date          string
	White         string
	Black         string
	Result        string
	MoveCount     int
	FinalPosition string
}

// ParseHeader reads a record file and extracts its tags, ply count and
// final position.
func ParseHeader(filePath string) (*GameInfo, error) {
	tags, plies, err := parseFile(filePath)
	if err != nil {
		return nil, err
	}

	final := tags["Start"]
	if final == "" {
		final = fen.StartPosition
	}
	if len(plies) > 0 {
		final = plies[len(plies)-1].Position
	}

	return &GameInfo{
		FilePath:      filePath,
		FileName:      filepath.Base(filePath),
		Session:       tags["Session"],
		Date:          tags["Date"],
		White:         tags["White"],
		Black:         tags["Black"],
		Result:        tags["Result"],
		MoveCount:     len(plies),
		FinalPosition: final,
	}, nil
}

// ParseMoves returns the plies stored in a record file.
func ParseMoves(filePath string) ([]game.PlayedMove, error) {
	_, plies, err := parseFile(filePath)
	return plies, err
}

func parseFile(filePath string) (map[string]string, []game.PlayedMove, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	tags := make(map[string]string)
	var plies []game.PlayedMove

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "["):
			key, value, ok := parseTag(line)
			if !ok {
				return nil, nil, fmt.Errorf("%w: line %d: bad tag %q", ErrMalformed, lineNo, line)
			}
			tags[key] = value
		default:
			p, err := parsePly(line)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			plies = append(plies, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return tags, plies, nil
}

// parseTag parses a [Key "value"] line.
func parseTag(line string) (string, string, bool) {
	if !strings.HasSuffix(line, "]") {
		return "", "", false
	}
	inner := line[1 : len(line)-1]
	key, rest, ok := strings.Cut(inner, " ")
	if !ok || key == "" {
		return "", "", false
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest))
	if err != nil {
		return "", "", false
	}
	return key, value, true
}

func parsePly(line string) (game.PlayedMove, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return game.PlayedMove{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformed, len(fields))
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return game.PlayedMove{}, fmt.Errorf("%w: bad ply number %q", ErrMalformed, fields[0])
	}

	var side types.Color
	switch fields[1] {
	case "w":
		side = types.White
	case "b":
		side = types.Black
	default:
		return game.PlayedMove{}, fmt.Errorf("%w: bad side %q", ErrMalformed, fields[1])
	}

	var move *types.Move
	if fields[2] != "--" {
		m, err := parseMove(fields[2])
		if err != nil {
			return game.PlayedMove{}, err
		}
		move = &m
	}

	if _, err := fen.Decode(fields[3]); err != nil {
		return game.PlayedMove{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return game.PlayedMove{Ply: n, Side: side, Move: move, Position: fields[3]}, nil
}

// parseMove parses the "e2-e4" form written by types.Move.String.
func parseMove(s string) (types.Move, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return types.Move{}, fmt.Errorf("%w: bad move %q", ErrMalformed, s)
	}
	f, err1 := parseSquare(from)
	t, err2 := parseSquare(to)
	if err1 != nil || err2 != nil {
		return types.Move{}, fmt.Errorf("%w: bad move %q", ErrMalformed, s)
	}
	return types.Move{From: f, To: t}, nil
}

// parseSquare parses algebraic notation; rank 8 is row 0.
func parseSquare(s string) (types.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return types.Square{}, fmt.Errorf("%w: bad square %q", ErrMalformed, s)
	}
	return types.Square{Row: int('8' - s[1]), Col: int(s[0] - 'a')}, nil
}

// ListGames scans a directory for record files and returns their parsed
// headers, sorted newest-first (by filename, which contains timestamps).
func ListGames(dir string) ([]GameInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var games []GameInfo
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		info, err := ParseHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		games = append(games, *info)
	}
	return games, nil
}
