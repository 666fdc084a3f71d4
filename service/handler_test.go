package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"termchess/engine"
	"termchess/engine/remote"
	"termchess/fen"
	"termchess/service"
	"termchess/types"
)

const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	return service.New(service.NewHandlers(service.NewRules(func(int) int { return 0 }), nil))
}

func doRequest(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return m
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get(echo.HeaderXRequestID)); err != nil {
		t.Errorf("request id %q is not a uuid", rec.Header().Get(echo.HeaderXRequestID))
	}
}

func TestValidateMoveLegal(t *testing.T) {
	body := engine.ValidateRequest{FEN: fen.StartPosition, Move: engine.WireMove{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4}}
	rec := doRequest(t, newTestServer(t), http.MethodPost, "/validate_move", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	v, err := engine.DecodeValidateResponse(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeValidateResponse: %v", err)
	}
	if !v.Valid || v.Position != afterE4 {
		t.Errorf("validation = %+v", v)
	}
}

func TestValidateMoveIllegal(t *testing.T) {
	body := engine.ValidateRequest{FEN: fen.StartPosition, Move: engine.WireMove{FromRow: 6, FromCol: 4, ToRow: 3, ToCol: 4}}
	rec := doRequest(t, newTestServer(t), http.MethodPost, "/validate_move", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	m := decodeMap(t, rec)
	if m["valid"] != false {
		t.Errorf("valid = %v", m["valid"])
	}
	if _, ok := m["newFen"]; ok {
		t.Error("newFen sent for an illegal move")
	}
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body any
		typ  string
	}{
		{"malformed json", "/validate_move", `{"fen":`, "/bad-request"},
		{"bad position", "/validate_move", engine.ValidateRequest{FEN: "8/8", Move: engine.WireMove{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4}}, "/bad-position"},
		{"move off board", "/validate_move", engine.ValidateRequest{FEN: fen.StartPosition, Move: engine.WireMove{FromRow: 6, FromCol: 4, ToRow: 9, ToCol: 4}}, "/bad-move"},
		{"engine bad position", "/get_move", engine.MoveRequest{FEN: "not a board"}, "/bad-position"},
	}
	e := newTestServer(t)
	for _, tt := range tests {
		rec := doRequest(t, e, http.MethodPost, tt.path, tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
			continue
		}
		var p service.Problem
		if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
			t.Fatalf("%s: decode: %v", tt.name, err)
		}
		if p.Type != "https://errors.termchess.local"+tt.typ {
			t.Errorf("%s: problem type %q", tt.name, p.Type)
		}
	}
}

func TestGetMoveBothShapes(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodPost, "/get_move", engine.MoveRequest{FEN: afterE4})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	raw := append([]byte(nil), rec.Body.Bytes()...)

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"valid", "newFen", "FromRow", "FromCol", "ToRow", "ToCol"} {
		if _, ok := m[key]; !ok {
			t.Errorf("response missing %q: %s", key, raw)
		}
	}

	// A client reading only the move object lands on the same position.
	var legacy engine.WireMove
	if err := json.Unmarshal(raw, &legacy); err != nil {
		t.Fatal(err)
	}
	b := fen.MustDecode(afterE4)
	b.Relocate(legacy.Move().From, legacy.Move().To)
	if fen.Encode(b) != m["newFen"] {
		t.Errorf("move %v does not produce newFen %v", legacy.Move(), m["newFen"])
	}
}

func TestGetMoveNoLegalReply(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodPost, "/get_move", engine.MoveRequest{FEN: "k7/1Q6/1K6/8/8/8/8/8"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	r, err := engine.DecodeMoveResponse(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeMoveResponse: %v", err)
	}
	if r.HasMove() {
		t.Errorf("reply = %+v, want no move", r)
	}
}

func TestRemoteClientAgainstService(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	defer srv.Close()

	cfg := engine.DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	c := remote.NewClient(cfg)
	ctx := context.Background()

	e2e4 := types.Move{From: types.Square{Row: 6, Col: 4}, To: types.Square{Row: 4, Col: 4}}
	v, err := c.ValidateMove(ctx, fen.StartPosition, e2e4)
	if err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	if !v.Valid || v.Position != afterE4 {
		t.Fatalf("validation = %+v", v)
	}

	r, err := c.RequestMove(ctx, v.Position)
	if err != nil {
		t.Fatalf("RequestMove: %v", err)
	}
	if !r.HasMove() || r.Position == "" {
		t.Fatalf("reply = %+v", r)
	}
	if _, err := fen.Decode(r.Position); err != nil {
		t.Errorf("reply position: %v", err)
	}

	v, err = c.ValidateMove(ctx, fen.StartPosition, types.Move{From: e2e4.From, To: types.Square{Row: 3, Col: 4}})
	if err != nil || v.Valid {
		t.Errorf("illegal move: %+v %v", v, err)
	}

	if _, err := c.ValidateMove(ctx, "8/8", e2e4); err == nil {
		t.Error("expected an error for a 400 response")
	}
}
