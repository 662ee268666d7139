package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const frameBoundary = "frame"

// handleVideoFeed streams annotated camera frames as MJPEG until the client
// goes away or the scanner stops.
func (a *API) handleVideoFeed(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		a.logger.Debug("clear write deadline", zap.Error(err))
	}

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(frameBoundary); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	started := false
	err := a.scanner.Stream(r.Context(), func(jpeg []byte) error {
		if !started {
			w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+frameBoundary)
			w.Header().Set("Cache-Control", "no-cache, no-store")
			w.WriteHeader(http.StatusOK)
			started = true
		}

		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   {"image/jpeg"},
			"Content-Length": {strconv.Itoa(len(jpeg))},
		})
		if err != nil {
			return err
		}
		if _, err := part.Write(jpeg); err != nil {
			return err
		}
		return rc.Flush()
	})

	if !started {
		if err == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		handleDomainError(w, err)
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("video feed ended", zap.Error(err))
	}
	_ = mw.Close()
	_ = rc.Flush()
}
