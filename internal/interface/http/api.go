package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcart "example.com/pos-scanner/internal/domain/cart"
	domorder "example.com/pos-scanner/internal/domain/order"
	domproduct "example.com/pos-scanner/internal/domain/product"
	domscan "example.com/pos-scanner/internal/domain/scan"
	cartuc "example.com/pos-scanner/internal/usecase/cart"
	checkoutuc "example.com/pos-scanner/internal/usecase/checkout"
	orderuc "example.com/pos-scanner/internal/usecase/order"
	productuc "example.com/pos-scanner/internal/usecase/product"
	scanuc "example.com/pos-scanner/internal/usecase/scan"
)

// Scanner is the scan engine as seen by the HTTP layer.
type Scanner interface {
	Start(ctx context.Context) error
	Stop()
	Status() scanuc.Status
	SetMode(mode domscan.Mode) error
	ScanOnce(ctx context.Context, mode domscan.Mode, timeout time.Duration) (domscan.RegistrationResult, error)
	TakeRegistration() (domscan.RegistrationResult, bool)
	Stream(ctx context.Context, emit func(jpeg []byte) error) error
}

type API struct {
	productSvc  *productuc.Service
	cartSvc     *cartuc.Service
	checkoutSvc *checkoutuc.Service
	orderSvc    *orderuc.Service
	scanner     Scanner
	storeCheck  func(ctx context.Context) error
	scanTimeout ScanTimeouts
	validator   *validator.Validate
	logger      *zap.Logger
}

// ScanTimeouts bounds the single-shot scan wait requested by clients.
type ScanTimeouts struct {
	Default time.Duration
	Max     time.Duration
}

type Dependencies struct {
	ProductService  *productuc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	OrderService    *orderuc.Service
	Scanner         Scanner
	StoreCheck      func(ctx context.Context) error
	ScanTimeouts    ScanTimeouts
	Logger          *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	validate := validator.New()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ScanTimeouts.Default <= 0 {
		deps.ScanTimeouts.Default = 10 * time.Second
	}
	if deps.ScanTimeouts.Max < deps.ScanTimeouts.Default {
		deps.ScanTimeouts.Max = deps.ScanTimeouts.Default
	}
	return &API{
		productSvc:  deps.ProductService,
		cartSvc:     deps.CartService,
		checkoutSvc: deps.CheckoutService,
		orderSvc:    deps.OrderService,
		scanner:     deps.Scanner,
		storeCheck:  deps.StoreCheck,
		scanTimeout: deps.ScanTimeouts,
		validator:   validate,
		logger:      deps.Logger,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/store", a.handleStoreHealth)
	r.Get("/video_feed", a.handleVideoFeed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(rr chi.Router) {
			rr.Get("/", a.handleListProducts)
			rr.Post("/", a.handleCreateProduct)
			rr.Get("/barcode/{barcode}", a.handleGetProductByBarcode)
			rr.Get("/{id}", a.handleGetProduct)
			rr.Put("/{id}", a.handleUpdateProduct)
			rr.Delete("/{id}", a.handleDeleteProduct)
		})

		r.Route("/cart", func(rr chi.Router) {
			rr.Get("/", a.handleGetCart)
			rr.Put("/items/{barcode}", a.handleUpdateCartItem)
			rr.Delete("/items/{barcode}", a.handleRemoveCartItem)
			rr.Post("/clear", a.handleClearCart)
		})
		r.Post("/checkout", a.handleCheckout)

		r.Route("/orders", func(rr chi.Router) {
			rr.Get("/", a.handleListOrders)
			rr.Get("/{id}", a.handleGetOrder)
			rr.Get("/{id}/invoice", a.handleGetInvoice)
		})

		r.Route("/scanner", func(rr chi.Router) {
			rr.Post("/start", a.handleStartScanner)
			rr.Post("/stop", a.handleStopScanner)
			rr.Get("/status", a.handleScannerStatus)
			rr.Put("/mode", a.handleSetScanMode)
			rr.Post("/scan-once", a.handleScanOnce)
			rr.Get("/registration", a.handleTakeRegistration)
		})
	})

	return r
}

func (a *API) handleStoreHealth(w http.ResponseWriter, r *http.Request) {
	if a.storeCheck == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unknown"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.storeCheck(ctx); err != nil {
		a.logger.Warn("store health check failed", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":      p.ID,
		"barcode": p.Barcode,
		"name":    p.Name,
		"price":   p.Price.StringFixed(2),
		"stock":   p.Stock,
	}
}

func mapLineItem(item domcart.LineItem) map[string]any {
	return map[string]any{
		"barcode":    item.Barcode,
		"product_id": item.ProductID,
		"name":       item.Name,
		"unit_price": item.UnitPrice.StringFixed(2),
		"quantity":   item.Quantity,
		"line_total": item.LineTotal().StringFixed(2),
	}
}

func mapCart(snapshot domcart.Snapshot) map[string]any {
	items := make([]map[string]any, 0, len(snapshot))
	var count int64
	for _, item := range snapshot.Items() {
		items = append(items, mapLineItem(item))
		count += item.Quantity
	}
	return map[string]any{
		"items":      items,
		"item_count": count,
		"total":      snapshot.Total().StringFixed(2),
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"barcode":    item.Barcode,
			"name":       item.Name,
			"price":      item.Price.StringFixed(2),
			"quantity":   item.Quantity,
			"total":      item.Total.StringFixed(2),
		})
	}

	return map[string]any{
		"id":           o.ID,
		"total_amount": o.TotalAmount.StringFixed(2),
		"item_count":   o.ItemCount(),
		"created_at":   o.CreatedAt,
		"items":        items,
	}
}

func mapInvoice(inv *orderuc.Invoice) map[string]any {
	lines := make([]map[string]any, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		lines = append(lines, map[string]any{
			"barcode":  line.Barcode,
			"name":     line.Name,
			"quantity": line.Quantity,
			"price":    line.UnitPrice.StringFixed(2),
			"total":    line.LineTotal.StringFixed(2),
		})
	}
	return map[string]any{
		"order_id":   inv.OrderID,
		"issued_at":  inv.IssuedAt,
		"item_count": inv.ItemCount,
		"total":      inv.Total.StringFixed(2),
		"lines":      lines,
	}
}

func mapRegistration(r domscan.RegistrationResult) map[string]any {
	return map[string]any{
		"accepted": r.Accepted,
		"barcode":  r.Barcode,
		"reason":   r.Reason,
	}
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domcart.ErrItemNotInCart):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domproduct.ErrBarcodeExists):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domproduct.ErrInvalidProduct),
		errors.Is(err, domorder.ErrEmptyOrderItems),
		errors.Is(err, domorder.ErrCheckoutValidation),
		errors.Is(err, domscan.ErrInvalidMode):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domscan.ErrDeviceUnavailable),
		errors.Is(err, domscan.ErrFrameUnavailable):
		respondError(w, http.StatusServiceUnavailable, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
