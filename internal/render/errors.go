package render

import "errors"

var (
	ErrClosed      = errors.New("render: renderer closed")
	ErrInvalidSize = errors.New("render: frame dimensions must be positive")
)
