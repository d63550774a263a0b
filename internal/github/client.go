// Package github decorates portfolio projects with repository metadata from
// the GitHub REST API.
//
// ENRICHMENT IS BEST EFFORT:
// Projects are stored with owner and name only. When the client asks for
// enrichment, the service calls Enrich for each project and, on any error,
// shows the project without languages or update time. Nothing here is ever
// allowed to fail a request.
//
// AUTHENTICATION:
// Unauthenticated callers get 60 requests an hour from GitHub. With a
// personal access token configured, every request carries
// "Authorization: Bearer <token>" via an oauth2 static token source and the
// limit rises to 5000.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/hoangchien/portfolio/internal/breaker"
	"github.com/hoangchien/portfolio/internal/config"
)

// ErrRepoNotFound means GitHub answered 404 for owner/name.
var ErrRepoNotFound = errors.New("github: repository not found")

// Repo is the enrichment attached to a project.
type Repo struct {
	// Languages ordered by bytes of code, largest first.
	Languages []string
	UpdatedAt time.Time
}

// repoResponse is the part of GET /repos/{owner}/{repo} we use.
// API docs: https://docs.github.com/en/rest/repos/repos#get-a-repository
type repoResponse struct {
	UpdatedAt time.Time `json:"updated_at"`
	PushedAt  time.Time `json:"pushed_at"`
}

// Client calls the GitHub API. Results are cached for cacheTTL so listing
// projects does not spend the rate limit on every page view.
type Client struct {
	http     *http.Client
	baseURL  string
	cb       *gobreaker.CircuitBreaker[*Repo]
	limiter  *rate.Limiter
	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	repo    *Repo
	expires time.Time
}

// NewClient builds a client from cfg. When cfg.Token is empty requests are
// sent unauthenticated.
func NewClient(cfg config.GitHubConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.Token != "" {
		// oauth2.NewClient returns an *http.Client whose transport adds the
		// bearer token to every request.
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(cfg.APIURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		cb: breaker.New[*Repo]("github", breaker.Settings{
			// A missing repository is an answer, not an outage.
			IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, ErrRepoNotFound) },
		}, logger),
		limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
		cacheTTL: 10 * time.Minute,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// Enrich returns metadata for github.com/owner/name.
func (c *Client) Enrich(ctx context.Context, owner, name string) (*Repo, error) {
	key := strings.ToLower(owner + "/" + name)
	if repo, ok := c.cached(key); ok {
		return repo, nil
	}

	repo, err := c.cb.Execute(func() (*Repo, error) {
		return c.fetch(ctx, owner, name)
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{repo: repo, expires: c.now().Add(c.cacheTTL)}
	c.mu.Unlock()
	return repo, nil
}

func (c *Client) cached(key string) (*Repo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.cache, key)
		return nil, false
	}
	return e.repo, true
}

func (c *Client) fetch(ctx context.Context, owner, name string) (*Repo, error) {
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)

	var info repoResponse
	if err := c.get(ctx, path, &info); err != nil {
		return nil, err
	}

	var langs map[string]int64
	if err := c.get(ctx, path+"/languages", &langs); err != nil {
		return nil, err
	}

	updated := info.UpdatedAt
	if info.PushedAt.After(updated) {
		updated = info.PushedAt
	}
	return &Repo{Languages: sortLanguages(langs), UpdatedAt: updated}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("github: waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrRepoNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("github: %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decoding %s: %w", path, err)
	}
	return nil
}

// sortLanguages orders languages by byte count, largest first. Ties are
// broken by name so the output is stable.
func sortLanguages(langs map[string]int64) []string {
	names := make([]string, 0, len(langs))
	for n := range langs {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
