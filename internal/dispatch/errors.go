package dispatch

import "errors"

var (
	ErrResolve     = errors.New("invalid startup configuration")
	ErrLoad        = errors.New("failed to load service")
	ErrUnsupported = errors.New("service kind not supported by this server")
)
