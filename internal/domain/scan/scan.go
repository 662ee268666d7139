package scan

import (
	"fmt"
	"image"
	"time"
)

// Mode selects what an accepted scan does.
type Mode string

const (
	ModeAddToCart     Mode = "add_to_cart"
	ModeRegisterCheck Mode = "register_check"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeAddToCart, ModeRegisterCheck:
		return true
	default:
		return false
	}
}

func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Frame is one captured raster. It is only valid for the iteration that read it.
type Frame struct {
	Image      image.Image
	CapturedAt time.Time
}

// Symbol is one decoded barcode with the region it was found in.
type Symbol struct {
	Text   string
	Format string
	Bounds image.Rectangle
}

// Reason codes for a rejected single-shot scan.
const (
	ReasonAlreadyExists = "already exists"
	ReasonTimeout       = "timeout"
	ReasonNotFound      = "not found"
)

type RegistrationResult struct {
	Accepted bool
	Barcode  string
	Reason   string
}

func Accepted(barcode string) RegistrationResult {
	return RegistrationResult{Accepted: true, Barcode: barcode}
}

func Rejected(barcode, reason string) RegistrationResult {
	return RegistrationResult{Barcode: barcode, Reason: reason}
}
