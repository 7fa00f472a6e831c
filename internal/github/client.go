package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitaid/internal/model"
)

// FetchError reports a failed hosting-API call with a message fit for
// direct display.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// Client provides access to the GitHub REST API on behalf of the signed-in
// user.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
	log     *zap.Logger
}

// New creates a GitHub client. The token is used as a bearer credential on
// every call.
func New(apiURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Token reports whether the client was configured with a credential at all.
func (c *Client) Token() string { return c.token }

// ghUser mirrors the fields we care about from GET /user.
type ghUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// CurrentUser resolves the identity behind the configured token. A 401
// means the session is unauthenticated rather than broken.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	body, err := c.get(ctx, "/user")
	if err != nil {
		return model.User{}, err
	}

	var u ghUser
	if err := json.Unmarshal(body, &u); err != nil {
		return model.User{}, &FetchError{Message: "Failed to parse user profile"}
	}
	if u.ID == 0 || u.Login == "" {
		return model.User{}, &FetchError{Message: "GitHub returned an incomplete user profile"}
	}

	return model.User{
		ID:        strconv.FormatInt(u.ID, 10),
		Login:     u.Login,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}, nil
}

// ghRepo mirrors the repository fields returned by GET /user/repos.
type ghRepo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Private     bool   `json:"private"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	HTMLURL     string `json:"html_url"`
}

// ListRepositories fetches the user's repository inventory. Malformed
// entries are dropped at the boundary; response order is preserved.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	body, err := c.get(ctx, "/user/repos")
	if err != nil {
		return nil, err
	}

	var raw []ghRepo
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{Message: "Failed to fetch repos"}
	}

	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		if r.ID <= 0 || r.Name == "" || r.Owner.Login == "" {
			c.log.Warn("dropping malformed repository entry",
				zap.Int64("id", r.ID), zap.String("name", r.Name))
			continue
		}
		repos = append(repos, model.Repository{
			ID:          r.ID,
			Name:        r.Name,
			Owner:       r.Owner.Login,
			Description: r.Description,
			Language:    r.Language,
			Private:     r.Private,
			Stars:       r.Stars,
			Forks:       r.Forks,
			HTMLURL:     r.HTMLURL,
		})
	}
	return repos, nil
}

// ghPR mirrors the pull-request fields returned by the pulls endpoint.
type ghPR struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	State     string `json:"state"`
}

// ListPullRequests fetches the open pull requests for one repository.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string) ([]model.PullRequest, error) {
	body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo))
	if err != nil {
		return nil, err
	}

	var raw []ghPR
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{Message: "Failed to fetch PRs"}
	}

	prs := make([]model.PullRequest, 0, len(raw))
	for _, p := range raw {
		if p.Number <= 0 {
			c.log.Warn("dropping malformed pull request entry",
				zap.String("repo", owner+"/"+repo), zap.Int("number", p.Number))
			continue
		}
		prs = append(prs, model.PullRequest{
			Number:    p.Number,
			Title:     p.Title,
			CreatedAt: p.CreatedAt,
			State:     p.State,
		})
	}
	return prs, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		c.log.Error("hosting API request failed", zap.String("path", path), zap.Error(err))
		return nil, &FetchError{Message: "GitHub is unreachable"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Message: "Failed to read GitHub response"}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.log.Warn("hosting API rejected credentials", zap.Int("status", resp.StatusCode))
		return nil, &FetchError{Status: resp.StatusCode, Message: "GitHub rejected the access token"}
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("hosting API error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, &FetchError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("GitHub API error (status %d)", resp.StatusCode),
		}
	}
	return body, nil
}
