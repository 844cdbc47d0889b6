package ttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSlots() []RawSlot {
	return []RawSlot{
		{
			LocationID:     14321,
			StartTimestamp: "2025-02-14T10:00",
			EndTimestamp:   "2025-02-14T10:15",
			Duration:       15,
		},
	}
}

func newTestClient(t *testing.T, upstream *httptest.Server, shape RequestShape) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{
		BaseURL: upstream.URL,
		HomeURL: upstream.URL,
		Shape:   shape,
		Timeout: time.Second * 5,
	})
	require.NoError(t, err)
	return client
}

func TestWarmupAcquiresSessionCookie(t *testing.T) {
	var slotCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "en", r.URL.Query().Get("lang"))
		require.Equal(t, "ttpui/home", r.URL.Query().Get("returnUrl"))
		http.SetCookie(w, &http.Cookie{Name: "TS01ddc3cd", Value: "warm"})
		w.WriteHeader(200)
	})
	mux.HandleFunc("/slots", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("TS01ddc3cd"); err == nil {
			slotCookie = c.Value
		}
		json.NewEncoder(w).Encode([]RawSlot{})
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	require.False(t, client.SessionValid())

	err := client.RefreshSession(context.Background())
	require.NoError(t, err)
	require.True(t, client.SessionValid())

	res := client.FetchSlots(context.Background(), SlotRequest{
		LocationID: "14321",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultEmpty, res.Kind)
	require.Equal(t, "warm", slotCookie)
}

func TestWarmupFailureLeavesSessionInvalid(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(421)
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	err := client.RefreshSession(context.Background())
	require.Error(t, err)
	require.False(t, client.SessionValid())
}

func TestFetchQueryShape(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/slots", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "soonest", q.Get("orderBy"))
		require.Equal(t, "100", q.Get("limit"))
		require.Equal(t, "14321", q.Get("locationId"))
		require.Equal(t, "2025-02-14", q.Get("minimum"))
		require.Equal(t, "2026-02-14", q.Get("maximum"))
		json.NewEncoder(w).Encode(testSlots())
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	res := client.FetchSlots(context.Background(), SlotRequest{
		// stray whitespace from comma-separated config should not leak upstream
		LocationID: " 14321 ",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultOk, res.Kind)
	require.Len(t, res.Slots, 1)
	require.Equal(t, "2025-02-14T10:00", res.Slots[0].StartTimestamp)
}

func TestFetchPathShape(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/slots/14321/2025-02-14/2026-02-14", r.URL.Path)
		require.Empty(t, r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(testSlots())
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapePath)
	res := client.FetchSlots(context.Background(), SlotRequest{
		LocationID: "14321",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultOk, res.Kind)
}

func TestFetchClassifiesAuthExpiredWithoutRetry(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(403)
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	client.valid = true

	res := client.FetchSlots(context.Background(), SlotRequest{
		LocationID: "14321",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultAuthExpired, res.Kind)
	require.Equal(t, 403, res.Status)
	require.False(t, client.SessionValid())
	// 403 must not hit the transport retry path
	require.Equal(t, 1, requests)
}

func TestFetchRetriesTransientUpstreamErrors(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(503)
			return
		}
		json.NewEncoder(w).Encode(testSlots())
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	res := client.FetchSlots(context.Background(), SlotRequest{
		LocationID: "14321",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultOk, res.Kind)
	require.Equal(t, 2, requests)
}

func TestFetchClassifiesUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"error":"no such location"}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	res := client.FetchSlots(context.Background(), SlotRequest{
		LocationID: "99999",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultUpstreamError, res.Kind)
	require.Equal(t, 404, res.Status)
	require.Contains(t, res.Body, "no such location")
}

func TestFetchClassifiesTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	client := newTestClient(t, upstream, ShapeQuery)
	res := client.FetchSlots(context.Background(), SlotRequest{
		LocationID: "14321",
		DateStart:  time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, ResultTransportError, res.Kind)
	require.Error(t, res.Err)
}

func TestDecodeSlotTimestamp(t *testing.T) {
	ts, err := DecodeSlotTimestamp("2025-02-14T10:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC), ts)

	_, err = DecodeSlotTimestamp("02/14/2025 10:00")
	require.Error(t, err)
}
