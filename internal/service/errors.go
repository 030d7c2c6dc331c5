package service

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrSearchFailed   = errors.New("web search failed")
	ErrUnknownTool    = errors.New("unknown tool")
)

// StatusOf maps service errors to HTTP status codes. It is registered with
// serverutils.RegisterStatusMapper at startup.
func StatusOf(err error) (int, bool) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, true
	case errors.Is(err, ErrUnknownTool):
		return http.StatusNotFound, true
	case errors.Is(err, ErrSearchFailed):
		return http.StatusBadGateway, true
	}
	return 0, false
}
