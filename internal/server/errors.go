package server

import "errors"

var (
	ErrServer        = errors.New("server error")
	ErrTLS           = errors.New("invalid TLS configuration")
	ErrUnknownRunner = errors.New("service has no such runner")
)
