package service

import "errors"

var (
	ErrNotFound = errors.New("bento not found")
	ErrManifest = errors.New("invalid bento manifest")
)
