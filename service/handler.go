package service

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"termchess/engine"
)

// Handlers serves the validation and move endpoints.
type Handlers struct {
	rules *Rules
	log   *zap.Logger
}

func NewHandlers(rules *Rules, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{rules: rules, log: log}
}

func (h *Handlers) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) handleValidateMove(c echo.Context) error {
	var req engine.ValidateRequest
	if err := c.Bind(&req); err != nil {
		return writeErr(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
	}

	m := req.Move.Move()
	valid, placement, err := h.rules.Validate(req.FEN, m)
	if err != nil {
		return writeErr(c, err)
	}
	h.log.Debug("validate", zap.String("fen", req.FEN), zap.Stringer("move", m), zap.Bool("valid", valid))

	resp := engine.ValidateResponse{Valid: valid}
	if valid {
		resp.NewFEN = &placement
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) handleGetMove(c echo.Context) error {
	var req engine.MoveRequest
	if err := c.Bind(&req); err != nil {
		return writeErr(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
	}

	m, placement, ok, err := h.rules.Reply(req.FEN)
	if err != nil {
		return writeErr(c, err)
	}
	valid := ok
	resp := engine.MoveResponse{Valid: &valid}
	if !ok {
		h.log.Info("no legal reply", zap.String("fen", req.FEN))
		return c.JSON(http.StatusOK, resp)
	}

	h.log.Debug("reply", zap.String("fen", req.FEN), zap.Stringer("move", m))
	w := engine.ToWire(m)
	resp.NewFEN = &placement
	resp.FromRow, resp.FromCol, resp.ToRow, resp.ToCol = &w.FromRow, &w.FromCol, &w.ToRow, &w.ToCol
	return c.JSON(http.StatusOK, resp)
}
