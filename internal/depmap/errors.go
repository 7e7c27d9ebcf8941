package depmap

import "errors"

var (
	ErrToken = errors.New("malformed dependency token")
	ErrJSON  = errors.New("malformed dependency map")
)
