package settings

import "errors"

var ErrSettings = errors.New("invalid framework settings")
