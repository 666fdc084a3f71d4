package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"termchess/engine"
	"termchess/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := engine.DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	return NewClient(cfg)
}

func TestValidateMoveRequest(t *testing.T) {
	var got engine.ValidateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/validate_move" {
			t.Errorf("path = %s, want /validate_move", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"valid":true,"newFen":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR"}`))
	})

	m := types.Move{From: types.Square{Row: 6, Col: 4}, To: types.Square{Row: 4, Col: 4}}
	v, err := c.ValidateMove(context.Background(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", m)
	if err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	if !v.Valid || v.Position != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR" {
		t.Errorf("validation = %+v", v)
	}
	if got.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Errorf("sent fen = %q", got.FEN)
	}
	if got.Move != (engine.WireMove{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4}) {
		t.Errorf("sent move = %+v", got.Move)
	}
}

func TestValidateMoveWireKeys(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"valid":false}`))
	})
	m := types.Move{From: types.Square{Row: 6, Col: 4}, To: types.Square{Row: 3, Col: 4}}
	if _, err := c.ValidateMove(context.Background(), "8/8/8/8/8/8/8/8", m); err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	move := string(raw["move"])
	for _, key := range []string{`"FromRow":6`, `"FromCol":4`, `"ToRow":3`, `"ToCol":4`} {
		if !strings.Contains(move, key) {
			t.Errorf("move %s missing %s", move, key)
		}
	}
}

func TestRequestMove(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_move" {
			t.Errorf("path = %s, want /get_move", r.URL.Path)
		}
		var req engine.MoveRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.FEN == "" {
			t.Error("empty fen in request")
		}
		w.Write([]byte(`{"FromRow":1,"FromCol":4,"ToRow":3,"ToCol":4}`))
	})

	r, err := c.RequestMove(context.Background(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR")
	if err != nil {
		t.Fatalf("RequestMove: %v", err)
	}
	if r.Move == nil || r.Move.String() != "e7-e5" {
		t.Errorf("reply = %+v", r)
	}
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.RequestMove(context.Background(), "8/8/8/8/8/8/8/8")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("Code = %d", se.Code)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("message %q should contain status", err.Error())
	}
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"newFen":"8/8/8/8/8/8/8/8"}`))
	})
	_, err := c.ValidateMove(context.Background(), "8/8/8/8/8/8/8/8", types.Move{})
	if !errors.Is(err, engine.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := engine.DefaultConfig()
	cfg.BaseURL = url
	c := NewClient(cfg)
	if _, err := c.RequestMove(context.Background(), "8/8/8/8/8/8/8/8"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestTimeoutLeavesCallerClient(t *testing.T) {
	cfg := engine.DefaultConfig()
	for name, order := range map[string]func(hc *http.Client) []Option{
		"timeout last": func(hc *http.Client) []Option {
			return []Option{WithHTTPClient(hc), WithTimeout(time.Second)}
		},
		"timeout first": func(hc *http.Client) []Option {
			return []Option{WithTimeout(time.Second), WithHTTPClient(hc)}
		},
	} {
		hc := &http.Client{}
		c := NewClient(cfg, order(hc)...)
		if c.http.Timeout != time.Second {
			t.Errorf("%s: timeout = %v", name, c.http.Timeout)
		}
		if hc.Timeout != 0 {
			t.Errorf("%s: caller's client changed to %v", name, hc.Timeout)
		}
	}

	hc := &http.Client{}
	if c := NewClient(cfg, WithHTTPClient(hc)); c.http != hc {
		t.Error("client without timeout was copied")
	}
}
