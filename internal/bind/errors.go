package bind

import "errors"

var (
	ErrScheme    = errors.New("bind address scheme must be tcp")
	ErrMalformed = errors.New("malformed bind address")
)
