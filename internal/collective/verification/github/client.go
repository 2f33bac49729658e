// Package github verifies repository and organization handles against the
// GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"

	"opencollective/internal/collective/verification"
	"opencollective/pkg/platform/circuit"
)

const (
	defaultBaseURL = "https://api.github.com/"
	perPage        = 100
	maxRepoPages   = 10

	timeoutMessage = "GitHub took too long to respond. Please try again later."
	outageMessage  = "GitHub is currently unavailable. Please try again later."
	badDataMessage = "GitHub returned an unexpected response."
)

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	MinStars int
}

// Client implements verification.Verifier. Every call authenticates with the
// actor's own token and runs under Config.Timeout.
type Client struct {
	cfg     Config
	baseURL *url.URL
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(client *Client) {
		client.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// New builds a client. An unparsable BaseURL is an error.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	// go-github resolves request paths against a base ending in a slash.
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse github base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:     cfg,
		baseURL: base,
		http:    http.DefaultClient,
		breaker: circuit.New("github"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ verification.Verifier = (*Client)(nil)

type handle struct {
	owner string
	repo  string
}

func (h handle) isRepo() bool { return h.repo != "" }

func parseHandle(raw string) (handle, bool) {
	owner, repo, hasRepo := strings.Cut(strings.Trim(strings.TrimSpace(raw), "/"), "/")
	if owner == "" || (hasRepo && (repo == "" || strings.Contains(repo, "/"))) {
		return handle{}, false
	}
	return handle{owner: owner, repo: repo}, true
}

// CheckAdmin verifies the token's owner administers the repository or organization.
func (c *Client) CheckAdmin(ctx context.Context, raw, token string) error {
	h, ok := parseHandle(raw)
	if !ok {
		return verification.NewError(verification.ErrorNotFound, verification.NotAdminMessage(strings.Contains(raw, "/")), nil)
	}
	notAdmin := verification.NotAdminMessage(h.isRepo())

	if h.isRepo() {
		repo, err := c.getRepo(ctx, h, token)
		if err != nil {
			return withMessage(err, notAdmin)
		}
		if !repo.GetPermissions().GetAdmin() {
			return verification.NewError(verification.ErrorNotAdmin, notAdmin, nil)
		}
		return nil
	}

	var membership *gh.Membership
	err := c.call(ctx, token, "orgs.get_membership", func(ctx context.Context, api *gh.Client) error {
		// An empty user reads the membership of the token's owner.
		m, _, err := api.Organizations.GetOrgMembership(ctx, "", h.owner)
		membership = m
		return err
	})
	if err != nil {
		return withMessage(err, notAdmin)
	}
	if membership.GetRole() != "admin" || membership.GetState() != "active" {
		return verification.NewError(verification.ErrorNotAdmin, notAdmin, nil)
	}
	return nil
}

// CheckPopularity verifies the handle has at least MinStars stars. For an
// organization, stars of its public repositories are summed.
func (c *Client) CheckPopularity(ctx context.Context, raw, token string) error {
	h, ok := parseHandle(raw)
	if !ok {
		return verification.NewError(verification.ErrorNotFound,
			verification.ThresholdMessage(strings.Contains(raw, "/"), c.cfg.MinStars), nil)
	}
	below := verification.ThresholdMessage(h.isRepo(), c.cfg.MinStars)

	stars, err := c.countStars(ctx, h, token)
	if err != nil {
		return withMessage(err, below)
	}
	if stars < c.cfg.MinStars {
		return verification.NewError(verification.ErrorThreshold, below, nil)
	}
	return nil
}

func (c *Client) countStars(ctx context.Context, h handle, token string) (int, error) {
	if h.isRepo() {
		repo, err := c.getRepo(ctx, h, token)
		if err != nil {
			return 0, err
		}
		return repo.GetStargazersCount(), nil
	}

	total := 0
	opts := &gh.RepositoryListByOrgOptions{ListOptions: gh.ListOptions{PerPage: perPage, Page: 1}}
	for page := 1; page <= maxRepoPages; page++ {
		var (
			repos []*gh.Repository
			next  int
		)
		err := c.call(ctx, token, "repos.list_by_org", func(ctx context.Context, api *gh.Client) error {
			rs, resp, err := api.Repositories.ListByOrg(ctx, h.owner, opts)
			repos = rs
			if resp != nil {
				next = resp.NextPage
			}
			return err
		})
		if err != nil {
			return 0, err
		}
		for _, r := range repos {
			total += r.GetStargazersCount()
		}
		if total >= c.cfg.MinStars || next == 0 || len(repos) < perPage {
			break
		}
		opts.Page = next
	}
	return total, nil
}

func (c *Client) getRepo(ctx context.Context, h handle, token string) (*gh.Repository, error) {
	var repo *gh.Repository
	err := c.call(ctx, token, "repos.get", func(ctx context.Context, api *gh.Client) error {
		r, _, err := api.Repositories.Get(ctx, h.owner, h.repo)
		repo = r
		return err
	})
	return repo, err
}

// api builds a GitHub client authenticated as the token's owner.
func (c *Client) api(ctx context.Context, token string) *gh.Client {
	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.http),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
	)
	api := gh.NewClient(httpClient)
	api.BaseURL = c.baseURL
	return api
}

// call runs one API request under the breaker and Config.Timeout and maps
// its failure into a verification.Error.
func (c *Client) call(ctx context.Context, token, op string, fn func(ctx context.Context, api *gh.Client) error) error {
	if !c.breaker.Allow() {
		return verification.NewError(verification.ErrorOutage, outageMessage, errors.New("circuit open"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	err := fn(ctx, c.api(ctx, token))
	if err == nil {
		c.recordSuccess(ctx)
		return nil
	}

	if status, ok := responseStatus(err); ok {
		switch {
		case status >= 500:
			c.recordFailure(ctx, op, err)
			return verification.NewError(verification.ErrorOutage, outageMessage, err)
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			c.recordSuccess(ctx)
			return verification.NewError(verification.ErrorAuthentication, "", err)
		case status == http.StatusNotFound:
			c.recordSuccess(ctx)
			return verification.NewError(verification.ErrorNotFound, "", err)
		default:
			c.recordSuccess(ctx)
			return verification.NewError(verification.ErrorBadData, badDataMessage, err)
		}
	}

	var transportErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		c.recordFailure(ctx, op, err)
		return verification.NewError(verification.ErrorTimeout, timeoutMessage, err)
	case errors.As(err, &transportErr):
		c.recordFailure(ctx, op, err)
		return verification.NewError(verification.ErrorOutage, outageMessage, err)
	default:
		// The response arrived but did not decode.
		c.recordSuccess(ctx)
		return verification.NewError(verification.ErrorBadData, badDataMessage, err)
	}
}

// responseStatus extracts the HTTP status from go-github's error types.
func responseStatus(err error) (int, bool) {
	var (
		errResp   *gh.ErrorResponse
		rateLimit *gh.RateLimitError
		abuse     *gh.AbuseRateLimitError
		resp      *http.Response
	)
	switch {
	case errors.As(err, &rateLimit):
		resp = rateLimit.Response
	case errors.As(err, &abuse):
		resp = abuse.Response
	case errors.As(err, &errResp):
		resp = errResp.Response
	}
	if resp == nil {
		return 0, false
	}
	return resp.StatusCode, true
}

func (c *Client) recordFailure(ctx context.Context, op string, cause error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "github circuit opened", "op", op, "error", cause)
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "github circuit closed")
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// withMessage fills in the user-facing message for failures that carry none,
// so that auth and lookup failures read like the check that failed.
func withMessage(err error, message string) error {
	var ve *verification.Error
	if errors.As(err, &ve) && ve.Message == "" {
		return verification.NewError(ve.Category, message, ve.Underlying)
	}
	return err
}
