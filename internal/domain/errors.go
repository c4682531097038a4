package domain

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidSide    = errors.New("invalid side")
	ErrInvalidInput   = errors.New("invalid input")
)
