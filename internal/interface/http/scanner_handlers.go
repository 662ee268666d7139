package http

import (
	"net/http"
	"time"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

type setModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=add_to_cart register_check"`
}

type scanOnceRequest struct {
	Mode      string `json:"mode" validate:"omitempty,oneof=add_to_cart register_check"`
	TimeoutMS int64  `json:"timeout_ms" validate:"gte=0"`
}

func (a *API) handleStartScanner(w http.ResponseWriter, r *http.Request) {
	if err := a.scanner.Start(r.Context()); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapStatus())
}

func (a *API) handleStopScanner(w http.ResponseWriter, r *http.Request) {
	a.scanner.Stop()
	writeJSON(w, http.StatusOK, a.mapStatus())
}

func (a *API) handleScannerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.mapStatus())
}

func (a *API) handleSetScanMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.scanner.SetMode(domscan.Mode(req.Mode)); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapStatus())
}

// handleScanOnce blocks until one barcode is read or the timeout elapses.
// A timeout is a normal negative result, not an error.
func (a *API) handleScanOnce(w http.ResponseWriter, r *http.Request) {
	var req scanOnceRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	mode := domscan.ModeRegisterCheck
	if req.Mode != "" {
		mode = domscan.Mode(req.Mode)
	}
	timeout := a.scanTimeout.Default
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	if timeout > a.scanTimeout.Max {
		timeout = a.scanTimeout.Max
	}

	result, err := a.scanner.ScanOnce(r.Context(), mode, timeout)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRegistration(result))
}

func (a *API) handleTakeRegistration(w http.ResponseWriter, r *http.Request) {
	result, ok := a.scanner.TakeRegistration()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, mapRegistration(result))
}

func (a *API) mapStatus() map[string]any {
	st := a.scanner.Status()
	resp := map[string]any{
		"running":    st.Running,
		"mode":       st.Mode,
		"session_id": st.SessionID,
	}
	if !st.LastAcceptedAt.IsZero() {
		resp["last_accepted_at"] = st.LastAcceptedAt
	}
	return resp
}
