package launch

import "errors"

var (
	ErrStrategy        = errors.New("no launch strategy selected")
	ErrProtocolVersion = errors.New("unsupported gRPC protocol version")
)
