package solicitudes

import "errors"

var (
	ErrNotFound      = errors.New("solicitud not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTerminalState = errors.New("solicitud already in terminal state")
)
