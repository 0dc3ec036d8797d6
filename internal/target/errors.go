package target

import "errors"

var (
	ErrNoLayers      = errors.New("target: no layers")
	ErrNoElements    = errors.New("target: layer has no elements")
	ErrWidth         = errors.New("target: layer width must be positive")
	ErrDensity       = errors.New("target: layer density must be positive")
	ErrRatio         = errors.New("target: element ratios must be positive")
	ErrUnknownUnit   = errors.New("target: unknown length unit")
	ErrUnknownSymbol = errors.New("target: unknown element")
)
