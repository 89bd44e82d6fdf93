package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	return New(Config{
		Timeout:    2 * time.Second,
		Retries:    3,
		RetryDelay: time.Millisecond,
	})
}

func TestRequestRetryExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient().Request(context.Background(), srv.URL, Options{})
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if netErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", netErr.Attempts)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestRequestRecoversAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	resp, err := testClient().Request(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
	if !resp.IsJSON() {
		t.Error("IsJSON() = false, want true")
	}
}

func TestResponseDecoding(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
	}{
		{
			name:        "json content type",
			contentType: "application/json; charset=utf-8",
			body:        `{"message":"ok"}`,
			wantJSON:    true,
		},
		{
			name:        "plain text",
			contentType: "text/html",
			body:        "<html>ok</html>",
			wantJSON:    false,
		},
		{
			name:        "missing content type",
			contentType: "",
			body:        "raw",
			wantJSON:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := testClient().Get(context.Background(), srv.URL, nil)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if resp.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", resp.IsJSON(), tt.wantJSON)
			}
			if resp.Text() != tt.body {
				t.Errorf("Text() = %q, want %q", resp.Text(), tt.body)
			}

			if tt.wantJSON {
				var decoded struct {
					Message string `json:"message"`
				}
				if err := resp.Decode(&decoded); err != nil {
					t.Fatalf("Decode() error = %v", err)
				}
				if decoded.Message != "ok" {
					t.Errorf("decoded message = %q, want %q", decoded.Message, "ok")
				}
			}
		})
	}
}

func TestRequestWithCookie(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := testClient().RequestWithCookie(context.Background(), srv.URL, "session=abc123", Options{})
	if err != nil {
		t.Fatalf("RequestWithCookie() error = %v", err)
	}
	if gotCookie != "session=abc123" {
		t.Errorf("Cookie header = %q, want %q", gotCookie, "session=abc123")
	}
}

func TestPostJSONEncodesBody(t *testing.T) {
	var gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := testClient().PostJSON(context.Background(), srv.URL, map[string]string{"platform": "web"}, nil)
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody != `{"platform":"web"}` {
		t.Errorf("body = %q, want %q", gotBody, `{"platform":"web"}`)
	}
}

func TestRequestTimeoutCountsAsAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(Config{
		Timeout:    10 * time.Millisecond,
		Retries:    2,
		RetryDelay: time.Millisecond,
	})

	_, err := client.Request(context.Background(), srv.URL, Options{})
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T", err)
	}
	if netErr.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", netErr.Attempts)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}
