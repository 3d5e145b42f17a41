package fireplus

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"fireplus_bridge/internal/models"
)

// fakeController serves the three endpoints and records writes.
type fakeController struct {
	mu            sync.Mutex
	panel         string
	configuration string
	status        int
	delay         time.Duration
	writes        []url.Values
	contentTypes  []string
}

func (f *fakeController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == panelPath:
		_, _ = io.WriteString(w, f.panel)
	case r.Method == http.MethodGet && r.URL.Path == configurationPath:
		_, _ = io.WriteString(w, f.configuration)
	case r.Method == http.MethodPost && r.URL.Path == writePath:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.writes = append(f.writes, r.PostForm)
		f.contentTypes = append(f.contentTypes, r.Header.Get("Content-Type"))
		f.mu.Unlock()
		_, _ = io.WriteString(w, "OK")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeServer(t *testing.T, f *fakeController) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), srv
}

func TestClient_Read(t *testing.T) {
	f := &fakeController{panel: frame(v2Panel()...), configuration: frame(v2Configuration()...)}
	c, _ := newFakeServer(t, f)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	c.now = func() time.Time { return fixed }

	s, err := c.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if s.Version != models.ProtocolV2 || s.Temperature != 412 || s.SerialNumber != "SN-42" {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if !s.FetchedAt.Equal(fixed) || s.FetchedAt.Location() != time.UTC {
		t.Fatalf("FetchedAt = %v, want %v in UTC", s.FetchedAt, fixed)
	}
}

func TestClient_Read_InvalidResponse(t *testing.T) {
	f := &fakeController{panel: frame("_", "1"), configuration: frame(v1Configuration()...)}
	c, _ := newFakeServer(t, f)

	_, err := c.Read(context.Background())
	var ire *InvalidResponseError
	if !errors.As(err, &ire) {
		t.Fatalf("expected *InvalidResponseError, got %T: %v", err, err)
	}
}

func TestClient_Read_HTTPStatusIsCommunicationError(t *testing.T) {
	c, _ := newFakeServer(t, &fakeController{status: http.StatusInternalServerError})

	_, err := c.Read(context.Background())
	var ce *CommunicationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CommunicationError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected error to match ErrAPI")
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	f := &fakeController{panel: frame(v1Panel()...), delay: time.Second}
	srv := httptest.NewServer(f)
	defer srv.Close()
	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))

	_, err := c.Fetch(context.Background(), http.MethodGet, srv.URL+panelPath, nil)
	var ce *CommunicationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CommunicationError, got %T: %v", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline, got %v", err)
	}
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := NewClient(addr, WithIPFamily(IPv4))
	_, err = c.Fetch(context.Background(), http.MethodGet, c.BaseURL()+panelPath, nil)
	var ce *CommunicationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CommunicationError, got %T: %v", err, err)
	}
}

func TestClient_Fetch_BadRequestIsAPIError(t *testing.T) {
	c := NewClient("fire")
	_, err := c.Fetch(context.Background(), "BAD METHOD", "http://fire/", nil)
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
}

func TestClient_Fetch_CanceledIsAPIError(t *testing.T) {
	f := &fakeController{panel: frame(v1Panel()...), delay: time.Second}
	c, srv := newFakeServer(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, http.MethodGet, srv.URL+panelPath, nil)
	var ae *APIError
	if !errors.As(err, &ae) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected *APIError wrapping context.Canceled, got %T: %v", err, err)
	}
}

func TestClient_UpdateSettings_RereadsAndPosts(t *testing.T) {
	f := &fakeController{panel: frame(v2Panel()...), configuration: frame(v2Configuration()...)}
	c, _ := newFakeServer(t, f)

	brightness := 20
	if err := c.UpdateSettings(context.Background(), Settings{Brightness: &brightness}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(f.writes))
	}
	got := f.writes[0]
	if got.Get("Helligkeit") != "20" || got.Get("CNT") != "0" || got.Get("Lautstaerke") != "60" {
		t.Fatalf("unexpected write form: %v", got)
	}
	if f.contentTypes[0] != "application/x-www-form-urlencoded" {
		t.Fatalf("content type = %q", f.contentTypes[0])
	}
}

func TestClient_UpdateSettings_ReadFailureSkipsWrite(t *testing.T) {
	f := &fakeController{panel: "broken", configuration: frame(v2Configuration()...)}
	c, _ := newFakeServer(t, f)

	if err := c.UpdateSettings(context.Background(), Settings{}); err == nil {
		t.Fatalf("expected error")
	}
	if len(f.writes) != 0 {
		t.Fatalf("no write expected after failed read")
	}
}

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"fire":                  "http://fire",
		"192.168.1.20":          "http://192.168.1.20",
		"192.168.1.20:8080":     "http://192.168.1.20:8080",
		"fe80::1":               "http://[fe80::1]",
		"[fe80::1]:80":          "http://[fe80::1]:80",
		"http://127.0.0.1:9/":   "http://127.0.0.1:9",
		"  https://fire.local ": "https://fire.local",
	}
	for in, want := range cases {
		if got := baseURL(in); got != want {
			t.Fatalf("baseURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseIPFamily(t *testing.T) {
	cases := map[string]IPFamily{"": IPAny, "any": IPAny, "IPv4": IPv4, "v6": IPv6, "ipv6": IPv6}
	for in, want := range cases {
		got, err := ParseIPFamily(in)
		if err != nil || got != want {
			t.Fatalf("ParseIPFamily(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseIPFamily("ipx"); err == nil {
		t.Fatalf("expected error for unknown family")
	}
}
