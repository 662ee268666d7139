package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type updateCartItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.GetCart()))
}

// handleUpdateCartItem sets a line's quantity; zero or less removes it.
func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := a.cartSvc.UpdateQuantity(chi.URLParam(r, "barcode"), *req.Quantity); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.GetCart()))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	a.cartSvc.RemoveItem(chi.URLParam(r, "barcode"))
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.GetCart()))
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	a.cartSvc.Clear()
	writeJSON(w, http.StatusOK, mapCart(a.cartSvc.GetCart()))
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	order, err := a.checkoutSvc.Checkout(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrder(order))
}
