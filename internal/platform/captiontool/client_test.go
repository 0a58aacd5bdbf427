package captiontool_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexivid/lexivid/internal/captions"
	"github.com/lexivid/lexivid/internal/config"
	"github.com/lexivid/lexivid/internal/platform/captiontool"
)

func newTestClient(endpoint string) *captiontool.Client {
	cfg := config.CaptionsConfig{Endpoint: endpoint, TimeoutSeconds: 5}
	return captiontool.NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchCaptionsFetched(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "fetched",
			"cues": [
				{"start_sec": 0, "end_sec": 1.5, "text": "hello there"},
				{"start_sec": 1.5, "end_sec": 3, "text": "how are you"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.FetchCaptions(context.Background(), "mat-1", "yt-abc", "https://example.com/watch/abc")
	require.NoError(t, err)

	assert.Equal(t, captions.StatusFetched, result.Status)
	require.Len(t, result.Cues, 2)
	assert.Equal(t, "hello there", result.Cues[0].Text)
	assert.InDelta(t, 1.5, result.Cues[0].EndSec, 0.0001)

	assert.Equal(t, "mat-1", gotBody["target_id"])
	assert.Equal(t, "yt-abc", gotBody["external_id"])
	assert.Equal(t, "https://example.com/watch/abc", gotBody["external_url"])
}

func TestFetchCaptionsUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "unavailable", "reason": "no_captions"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.FetchCaptions(context.Background(), "mat-1", "yt-abc", "")
	require.NoError(t, err)

	assert.Equal(t, captions.StatusUnavailable, result.Status)
	assert.Equal(t, captions.ReasonNoCaptions, result.Reason)
	assert.Empty(t, result.Cues)
}

func TestFetchCaptionsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantMsg: "status 500",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
			wantMsg: "failed to decode caption response",
		},
		{
			name: "unknown status value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status": "partial"}`))
			},
			wantMsg: `unknown status "partial"`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := newTestClient(server.URL)
			result, err := client.FetchCaptions(context.Background(), "mat-1", "yt-abc", "")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestFetchCaptionsTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCaptions(context.Background(), "mat-1", "yt-abc", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caption tool request failed")
}
