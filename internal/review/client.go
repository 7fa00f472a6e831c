package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the GitAid review backend.
type Client struct {
	baseURL string
	httpCli *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: &http.Client{Timeout: timeout},
		log:     log,
	}
}

type tokenRequest struct {
	GitHubUserID string `json:"github_user_id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// MintToken exchanges the signed-in user's identifier for a service
// credential. No automatic retry: on failure the credential stays absent
// until a new session.
func (c *Client) MintToken(ctx context.Context, githubUserID string) (string, error) {
	body, err := c.post(ctx, "/api/token", tokenRequest{GitHubUserID: githubUserID})
	if err != nil {
		return "", err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("backend returned an empty token")
	}

	// Inspection note only; the component's own state stays canonical.
	c.log.Debug("minted service credential",
		zap.String("github_user_id", githubUserID),
		zap.Int("token_len", len(resp.Token)))
	return resp.Token, nil
}

type reviewRequest struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	PRNumber int    `json:"pr_number"`
}

// reviewResponse carries exactly one of review/error in practice, but the
// backend does not tag which; absence of review is treated as failure.
type reviewResponse struct {
	Review string `json:"review"`
	Error  string `json:"error"`
}

// RequestReview asks the backend to review one pull request. A response
// without a review field is a failure, surfacing the backend's error text
// when present.
func (c *Client) RequestReview(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	body, err := c.post(ctx, "/api/pr-review", reviewRequest{
		Owner:    owner,
		Repo:     repo,
		PRNumber: prNumber,
	})
	if err != nil {
		return "", err
	}

	var resp reviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.Error("malformed review response", zap.Error(err))
		return "", fmt.Errorf("parsing review response: %w", err)
	}
	if resp.Review == "" {
		if resp.Error != "" {
			return "", &BackendError{Msg: resp.Error}
		}
		return "", fmt.Errorf("backend returned no review")
	}
	return resp.Review, nil
}

// BackendError carries failure text produced by the review backend itself,
// as opposed to transport-level failures.
type BackendError struct {
	Msg string
}

func (e *BackendError) Error() string { return e.Msg }

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		c.log.Error("backend request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("review backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("backend error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("review backend error (status %d)", resp.StatusCode)
	}
	return body, nil
}
