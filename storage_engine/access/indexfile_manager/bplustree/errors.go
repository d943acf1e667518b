package bplus

import "errors"

var (
	ErrInvalidKeyWidth = errors.New("unsupported key width")
	ErrInvalidMaxSize  = errors.New("max size out of range")
	ErrWrongPageKind   = errors.New("page is not of the expected kind")
)
