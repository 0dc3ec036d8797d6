package trim

import "errors"

var (
	ErrEmptyBatch    = errors.New("trim: batch has no ions")
	ErrInvalidSource = errors.New("trim: invalid ion source")
)
