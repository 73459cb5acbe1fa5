package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	tu "github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/testing"
)

func TestNew(t *testing.T) {
	t.Run("With Custom BaseURL and Client", func(t *testing.T) {
		customClient := &http.Client{}
		c := New(Options{BaseURL: "http://example.com/", HTTPClient: customClient})

		if c.BaseURL() != "http://example.com" {
			t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
		}
		if c.httpClient != customClient {
			t.Error("expected custom client to be used")
		}
		if c.limiter != nil {
			t.Error("expected no limiter without a rate limit")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		c := New(Options{RateLimit: 5})

		if c.BaseURL() != DefaultBaseURL {
			t.Errorf("expected default base URL, got %s", c.BaseURL())
		}
		if c.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
		if c.limiter == nil {
			t.Error("expected limiter when rate limit is set")
		}
	})

	t.Run("SetToken", func(t *testing.T) {
		c := New(Options{})
		c.SetToken("abc")
		if c.Token() != "abc" {
			t.Errorf("expected token abc, got %q", c.Token())
		}
		c.SetToken("")
		if c.Token() != "" {
			t.Error("empty token should clear")
		}
	})
}

func TestRequests(t *testing.T) {
	t.Run("Sends Bearer Token And Request ID", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if r.Header.Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"id": 3, "username": "lan", "is_admin": true, "created_at": "2024-01-01T00:00:00"})
		}))
		defer server.Close()

		c := New(Options{BaseURL: server.URL})
		c.SetToken("tok-1")

		user, err := c.Me(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.Username != "lan" || !user.IsAdmin {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("Authenticated Call Without Token", func(t *testing.T) {
		c := New(Options{BaseURL: "http://127.0.0.1:1"})
		_, err := c.SavedPlans(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("String Detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Recipe not found"}`))
		}))
		defer server.Close()

		_, err := New(Options{BaseURL: server.URL}).GetRecipe(context.Background(), 99)

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %T: %v", err, err)
		}
		if apiErr.StatusCode != http.StatusNotFound || apiErr.Detail != "Recipe not found" {
			t.Errorf("unexpected error %+v", apiErr)
		}
		if apiErr.Path != "/recipes/99" {
			t.Errorf("expected path /recipes/99, got %s", apiErr.Path)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected error to match ErrAPIRequest")
		}
		if Message(err, "fallback") != "Recipe not found" {
			t.Errorf("Message() = %q", Message(err, "fallback"))
		}
	})

	t.Run("Validation Detail List", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":[{"loc":["body","password"],"msg":"Value error, Password must be at least 8 characters long","type":"value_error"}]}`))
		}))
		defer server.Close()

		_, err := New(Options{BaseURL: server.URL}).Signup(context.Background(), "an", "short")
		if got := Message(err, "Failed to sign up"); got != "Value error, Password must be at least 8 characters long" {
			t.Errorf("Message() = %q", got)
		}
	})

	t.Run("No Detail Uses Fallback", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		_, err := New(Options{BaseURL: server.URL}).ListRecipes(context.Background(), 0, 12)
		if got := Message(err, "Search request failed"); got != "Search request failed" {
			t.Errorf("Message() = %q", got)
		}
		if StatusCode(err) != http.StatusInternalServerError {
			t.Errorf("StatusCode() = %d", StatusCode(err))
		}
	})

	t.Run("Unauthorized Is Auth Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Could not validate credentials"}`))
		}))
		defer server.Close()

		c := New(Options{BaseURL: server.URL})
		c.SetToken("expired")
		_, err := c.Me(context.Background())
		if !IsAuthFailure(err) {
			t.Errorf("expected auth failure, got %v", err)
		}
		if errors.Is(err, shared.ErrForbidden) {
			t.Error("401 must not match ErrForbidden")
		}
	})

	t.Run("Forbidden", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		c := New(Options{BaseURL: server.URL})
		c.SetToken("t")
		err := c.AdminDeleteUser(context.Background(), 4)
		if !errors.Is(err, shared.ErrForbidden) || IsAuthFailure(err) {
			t.Errorf("expected forbidden only, got %v", err)
		}
	})

	t.Run("Network Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		_, err := New(Options{BaseURL: "http://backend", HTTPClient: client}).Tags(context.Background())

		if !errors.Is(err, shared.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
		if Message(err, "ignored") != shared.NetworkErrorMessage {
			t.Errorf("Message() = %q", Message(err, "ignored"))
		}
	})

	t.Run("Body Read Failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		_, err := New(Options{BaseURL: "http://backend", HTTPClient: client}).Tags(context.Background())

		if !errors.Is(err, shared.ErrNetwork) || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read failure, got %v", err)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))
		defer server.Close()

		_, err := New(Options{BaseURL: server.URL}).Ingredients(context.Background())
		if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("expected decode error, got %v", err)
		}
	})

	t.Run("Empty Body On 204", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/recipes/5/save" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := New(Options{BaseURL: server.URL})
		c.SetToken("t")
		if err := c.UnsaveRecipe(context.Background(), 5); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(Options{BaseURL: server.URL}).Tags(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if Message(err, "x") != "" {
			t.Error("cancelled requests should produce no message")
		}
	})
}

func TestRaw(t *testing.T) {
	t.Run("Returns Non-2xx Responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected /health, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte(`{"status":"brewing"}`))
		}))
		defer server.Close()

		resp, err := New(Options{BaseURL: server.URL}).Raw(context.Background(), http.MethodGet, "health", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusTeapot || !resp.IsJSON {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("Posts Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if r.Header.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
				t.Errorf("unexpected body %q", body)
			}
			w.Write([]byte("plain"))
		}))
		defer server.Close()

		resp, err := New(Options{BaseURL: server.URL}).Raw(context.Background(), http.MethodPost, "/echo", []byte(`{"a":1}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON || string(resp.Body) != "plain" {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}
