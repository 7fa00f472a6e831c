package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return New(url, "test-token", 5*time.Second, zap.NewNop())
}

func TestCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer test-token", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/user" {
			t.Errorf("Path = %q, want /user", r.URL.Path)
		}
		w.Write([]byte(`{"id":12345,"login":"anna","name":"Anna","email":"anna@example.com","avatar_url":"https://example.com/a.png"}`))
	}))
	defer server.Close()

	user, err := newTestClient(server.URL).CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}
	if user.ID != "12345" {
		t.Errorf("ID = %q, want 12345", user.ID)
	}
	if user.Login != "anna" {
		t.Errorf("Login = %q, want anna", user.Login)
	}
}

func TestCurrentUser_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected error for 401")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", fe.Status)
	}
}

func TestListRepositories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			t.Errorf("Path = %q, want /user/repos", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":1,"name":"gitaid","owner":{"login":"anna"},"description":"PR reviews","language":"Go","private":false,"stargazers_count":42,"forks_count":3,"html_url":"https://github.com/anna/gitaid"},
			{"id":2,"name":"dotfiles","owner":{"login":"anna"},"private":true,"stargazers_count":0,"forks_count":0}
		]`))
	}))
	defer server.Close()

	repos, err := newTestClient(server.URL).ListRepositories(context.Background())
	if err != nil {
		t.Fatalf("ListRepositories error: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("got %d repos, want 2", len(repos))
	}
	if repos[0].Name != "gitaid" || repos[0].Owner != "anna" || repos[0].Stars != 42 {
		t.Errorf("repos[0] = %+v", repos[0])
	}
	if repos[0].Language != "Go" {
		t.Errorf("Language = %q, want Go", repos[0].Language)
	}
	if !repos[1].Private {
		t.Error("repos[1] should be private")
	}
	if repos[1].Language != "" {
		t.Errorf("absent language should stay empty, got %q", repos[1].Language)
	}
}

func TestListRepositories_DropsMalformedEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":0,"name":"no-id","owner":{"login":"anna"}},
			{"id":2,"name":"","owner":{"login":"anna"}},
			{"id":3,"name":"no-owner","owner":{}},
			{"id":4,"name":"good","owner":{"login":"anna"}}
		]`))
	}))
	defer server.Close()

	repos, err := newTestClient(server.URL).ListRepositories(context.Background())
	if err != nil {
		t.Fatalf("ListRepositories error: %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("got %d repos, want 1", len(repos))
	}
	if repos[0].Name != "good" {
		t.Errorf("kept repo = %q, want good", repos[0].Name)
	}
}

func TestListRepositories_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListRepositories(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", fe.Status)
	}
	if fe.Message == "" {
		t.Error("FetchError must carry a displayable message")
	}
}

func TestListRepositories_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListRepositories(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
}

func TestListPullRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/anna/gitaid/pulls" {
			t.Errorf("Path = %q, want /repos/anna/gitaid/pulls", r.URL.Path)
		}
		w.Write([]byte(`[
			{"number":7,"title":"Add filter","created_at":"2025-06-01T10:00:00Z","state":"open"},
			{"number":0,"title":"bogus"},
			{"number":9,"title":"Fix cache"}
		]`))
	}))
	defer server.Close()

	prs, err := newTestClient(server.URL).ListPullRequests(context.Background(), "anna", "gitaid")
	if err != nil {
		t.Fatalf("ListPullRequests error: %v", err)
	}
	if len(prs) != 2 {
		t.Fatalf("got %d PRs, want 2 (malformed entry dropped)", len(prs))
	}
	if prs[0].Number != 7 || prs[0].Title != "Add filter" {
		t.Errorf("prs[0] = %+v", prs[0])
	}
	if prs[0].CreatedAt != "2025-06-01T10:00:00Z" {
		t.Errorf("CreatedAt = %q", prs[0].CreatedAt)
	}
	if prs[1].Number != 9 {
		t.Errorf("prs[1].Number = %d, want 9", prs[1].Number)
	}
}

func TestListPullRequests_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListPullRequests(context.Background(), "anna", "gone")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", fe.Status)
	}
}
