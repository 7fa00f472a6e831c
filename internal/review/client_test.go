package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, zap.NewNop())
}

func TestMintToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/api/token" {
			t.Errorf("Path = %q, want /api/token", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["github_user_id"] != "12345" {
			t.Errorf("github_user_id = %q, want 12345", req["github_user_id"])
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-abc"})
	}))
	defer server.Close()

	token, err := newTestClient(server.URL).MintToken(context.Background(), "12345")
	if err != nil {
		t.Fatalf("MintToken error: %v", err)
	}
	if token != "jwt-abc" {
		t.Errorf("token = %q, want jwt-abc", token)
	}
}

func TestMintToken_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).MintToken(context.Background(), "12345"); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestRequestReview_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pr-review" {
			t.Errorf("Path = %q, want /api/pr-review", r.URL.Path)
		}
		var req struct {
			Owner    string `json:"owner"`
			Repo     string `json:"repo"`
			PRNumber int    `json:"pr_number"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Owner != "anna" || req.Repo != "gitaid" || req.PRNumber != 7 {
			t.Errorf("payload = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"review": "Looks good"})
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).RequestReview(context.Background(), "anna", "gitaid", 7)
	if err != nil {
		t.Fatalf("RequestReview error: %v", err)
	}
	if text != "Looks good" {
		t.Errorf("text = %q, want %q", text, "Looks good")
	}
}

func TestRequestReview_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RequestReview(context.Background(), "anna", "gitaid", 7)
	if err == nil {
		t.Fatal("expected error for response without review")
	}
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if be.Msg != "rate limited" {
		t.Errorf("Msg = %q, want %q", be.Msg, "rate limited")
	}
}

func TestRequestReview_NoReviewNoError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RequestReview(context.Background(), "anna", "gitaid", 7)
	if err == nil {
		t.Fatal("expected error when review is absent")
	}
	var be *BackendError
	if errors.As(err, &be) {
		t.Error("absent error text should not produce a BackendError")
	}
}

func TestRequestReview_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).RequestReview(context.Background(), "anna", "gitaid", 7); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestRequestReview_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).RequestReview(context.Background(), "anna", "gitaid", 7); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
