package scan

import "errors"

var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrFrameUnavailable  = errors.New("frame unavailable")
	ErrInvalidMode       = errors.New("invalid scan mode")
)
