package core

import "errors"

var (
	ErrInvalidBar    = errors.New("invalid price bar")
	ErrUnorderedBars = errors.New("bars not strictly increasing by date")
)
