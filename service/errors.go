package service

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const errBase = "https://errors.termchess.local"

// ErrBadRequest marks request bodies that cannot be decoded.
var ErrBadRequest = errors.New("bad_request")

// Problem is an RFC 7807 error body.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func badRequest(c echo.Context, kind, detail string) error {
	return c.JSON(http.StatusBadRequest, Problem{
		Type:   errBase + "/" + kind,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: detail,
	})
}

// writeErr maps an error from Rules or binding to the correct HTTP response.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrBadRequest):
		return badRequest(c, "bad-request", err.Error())
	case errors.Is(err, ErrBadPosition):
		return badRequest(c, "bad-position", err.Error())
	case errors.Is(err, ErrBadMove):
		return badRequest(c, "bad-move", err.Error())
	default:
		return c.JSON(http.StatusInternalServerError, Problem{
			Type:   errBase + "/internal",
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "Unexpected error.",
		})
	}
}
