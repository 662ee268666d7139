package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domcart "example.com/pos-scanner/internal/domain/cart"
	domproduct "example.com/pos-scanner/internal/domain/product"
	domscan "example.com/pos-scanner/internal/domain/scan"
)

type Catalog interface {
	GetByBarcode(ctx context.Context, barcode string) (*domproduct.Product, error)
}

type CartStore interface {
	AddOrIncrement(barcode string, productID int64, name string, unitPrice decimal.Decimal) domcart.LineItem
}

// Beeper signals an accepted scan. Implementations must not block.
type Beeper interface {
	Beep() error
}

type OutcomeKind int

const (
	// OutcomeNoSymbol: nothing decoded in this frame.
	OutcomeNoSymbol OutcomeKind = iota
	// OutcomeCooldown: a scan was accepted too recently; decoding skipped.
	OutcomeCooldown
	// OutcomeCartUpdated: the barcode matched a product and the cart grew.
	OutcomeCartUpdated
	// OutcomeDropped: the barcode has no catalog match in add-to-cart mode.
	OutcomeDropped
	// OutcomeRegistration: a register-check result is attached.
	OutcomeRegistration
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoSymbol:
		return "no_symbol"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeCartUpdated:
		return "cart_updated"
	case OutcomeDropped:
		return "dropped"
	case OutcomeRegistration:
		return "registration"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Kind         OutcomeKind
	Symbol       domscan.Symbol
	Stage        Stage
	Item         *domcart.LineItem
	Registration *domscan.RegistrationResult
}

// Decoded reports whether the frame produced a barcode.
func (o Outcome) Decoded() bool {
	return o.Symbol.Text != ""
}

// Dispatcher turns one frame into at most one accepted scan.
type Dispatcher struct {
	mu       sync.Mutex
	decoder  *Decoder
	debounce *Debouncer
	catalog  Catalog
	cart     CartStore
	beeper   Beeper
	now      func() time.Time
	logger   *zap.Logger
}

func NewDispatcher(decoder *Decoder, debounce *Debouncer, catalog Catalog, cart CartStore, beeper Beeper, now func() time.Time, logger *zap.Logger) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		decoder:  decoder,
		debounce: debounce,
		catalog:  catalog,
		cart:     cart,
		beeper:   beeper,
		now:      now,
		logger:   logger,
	}
}

// Dispatch never fails for a missing symbol or an active cooldown; an error
// is returned only when the catalog lookup itself fails.
func (d *Dispatcher) Dispatch(ctx context.Context, frame domscan.Frame, mode domscan.Mode) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !d.debounce.ShouldAttempt(now) {
		return Outcome{Kind: OutcomeCooldown}, nil
	}

	det, ok := d.decode(frame)
	if !ok {
		return Outcome{Kind: OutcomeNoSymbol}, nil
	}
	d.debounce.RecordAccepted(now)

	if mode == domscan.ModeRegisterCheck {
		return d.registerCheck(ctx, det)
	}
	return d.addToCart(ctx, det)
}

func (d *Dispatcher) decode(frame domscan.Frame) (det Detection, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("decoder panicked, frame skipped", zap.Any("panic", r))
			det, ok = Detection{}, false
		}
	}()

	det, ok, err := d.decoder.Decode(frame.Image)
	if err != nil {
		d.logger.Debug("decode failed, frame skipped", zap.Error(err))
		return Detection{}, false
	}
	return det, ok
}

func (d *Dispatcher) addToCart(ctx context.Context, det Detection) (Outcome, error) {
	code := det.Symbol.Text
	out := Outcome{Kind: OutcomeDropped, Symbol: det.Symbol, Stage: det.Stage}

	p, err := d.catalog.GetByBarcode(ctx, code)
	if errors.Is(err, domproduct.ErrProductNotFound) {
		d.logger.Debug("barcode not in catalog", zap.String("barcode", code))
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("lookup barcode %q: %w", code, err)
	}

	item := d.cart.AddOrIncrement(code, p.ID, p.Name, p.Price)
	d.beep()

	d.logger.Info("scan added to cart",
		zap.String("barcode", code),
		zap.String("stage", string(det.Stage)),
		zap.Int64("quantity", item.Quantity),
	)
	out.Kind = OutcomeCartUpdated
	out.Item = &item
	return out, nil
}

func (d *Dispatcher) registerCheck(ctx context.Context, det Detection) (Outcome, error) {
	code := det.Symbol.Text
	d.beep()

	var result domscan.RegistrationResult
	_, err := d.catalog.GetByBarcode(ctx, code)
	switch {
	case err == nil:
		result = domscan.Rejected(code, domscan.ReasonAlreadyExists)
	case errors.Is(err, domproduct.ErrProductNotFound):
		result = domscan.Accepted(code)
	default:
		return Outcome{Kind: OutcomeNoSymbol, Symbol: det.Symbol, Stage: det.Stage}, fmt.Errorf("lookup barcode %q: %w", code, err)
	}

	d.logger.Info("registration scan",
		zap.String("barcode", code),
		zap.Bool("accepted", result.Accepted),
	)
	return Outcome{Kind: OutcomeRegistration, Symbol: det.Symbol, Stage: det.Stage, Registration: &result}, nil
}

func (d *Dispatcher) beep() {
	if d.beeper == nil {
		return
	}
	if err := d.beeper.Beep(); err != nil {
		d.logger.Debug("beep failed", zap.Error(err))
	}
}
