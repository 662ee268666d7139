package http

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

func TestVideoFeed_StreamsMultipartFrames(t *testing.T) {
	env := newTestEnv()
	env.scanner.frames = [][]byte{[]byte("jpeg-1"), []byte("jpeg-2")}
	env.scanner.streamErr = domscan.ErrFrameUnavailable

	req := httptest.NewRequest(http.MethodGet, "/video_feed", nil)
	rec := httptest.NewRecorder()
	env.api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, rec.Flushed)
	mediaType, params, err := mime.ParseMediaType(rec.Header().Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/x-mixed-replace", mediaType)
	require.Equal(t, "frame", params["boundary"])

	mr := multipart.NewReader(rec.Body, "frame")
	var got []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		require.Equal(t, "image/jpeg", part.Header.Get("Content-Type"))
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		got = append(got, string(body))
	}
	require.Equal(t, []string{"jpeg-1", "jpeg-2"}, got)
}

func TestVideoFeed_DeviceUnavailable(t *testing.T) {
	env := newTestEnv()
	env.scanner.startErr = domscan.ErrDeviceUnavailable

	rec := doJSON(t, env, http.MethodGet, "/video_feed", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
