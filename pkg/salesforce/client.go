// Package salesforce provides authenticated REST access to Salesforce with a
// connect-once session gate. Authentication prefers the OAuth 2.0 refresh
// token flow and falls back to username/password when refresh credentials
// are absent or rejected.
package salesforce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// QueryResult holds the decoded records and total row count from a SOQL query.
type QueryResult struct {
	TotalSize int              `json:"totalSize"`
	Done      bool             `json:"done"`
	Records   []map[string]any `json:"records"`
}

// Client defines the Salesforce operations the analytics tools use.
type Client interface {
	Connect(ctx context.Context) error
	Query(ctx context.Context, soql string) (*QueryResult, error)
	Create(ctx context.Context, sObjectName string, fields map[string]any) (string, error)
	Update(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

// Config holds the credentials for both supported auth flows.
type Config struct {
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	InstanceURL   string
	Domain        string // "login" or "test"
	Username      string
	Password      string
	SecurityToken string
}

// ClientOption configures the session client.
type ClientOption func(*sessionClient)

// WithRateLimit sets a per-second rate limit for Salesforce API calls.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sessionClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithHTTPClient overrides the HTTP client used for the token exchange.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *sessionClient) { c.http = hc }
}

// sessionClient is the one piece of shared mutable process state: the
// Salesforce session. A mutex gates connection so concurrent first callers
// wait on the same in-flight attempt instead of opening duplicate sessions.
// A failed attempt leaves the session unset, so the next call tries again.
//
// The underlying go-salesforce/v3 library does not accept context.Context;
// ctx applies to the rate-limiter wait and the token exchange only. Once
// dispatched, a remote call runs to completion or failure.
type sessionClient struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter

	mu sync.Mutex
	sf *salesforce.Salesforce
}

// NewClient creates an unconnected Client. The session is established on
// the first Connect (or lazily by the first remote call).
func NewClient(cfg Config, opts ...ClientOption) Client {
	c := &sessionClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sessionClient) Connect(ctx context.Context) error {
	_, err := c.session(ctx)
	return err
}

// session returns the shared Salesforce session, establishing it at most
// once across concurrent callers.
func (c *sessionClient) session(ctx context.Context) (*salesforce.Salesforce, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sf != nil {
		return c.sf, nil
	}

	sf, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	c.sf = sf
	zap.L().Info("connected to salesforce")
	return sf, nil
}

func (c *sessionClient) connect(ctx context.Context) (*salesforce.Salesforce, error) {
	sf, refreshErr := c.connectRefreshToken(ctx)
	if refreshErr == nil {
		return sf, nil
	}

	if c.cfg.Username == "" || c.cfg.Password == "" || c.cfg.SecurityToken == "" {
		return nil, &AuthError{Err: refreshErr}
	}
	zap.L().Warn("oauth refresh failed, attempting username/password", zap.Error(refreshErr))

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         c.loginURL(),
		Username:       c.cfg.Username,
		Password:       c.cfg.Password,
		SecurityToken:  c.cfg.SecurityToken,
		ConsumerKey:    c.cfg.ClientID,
		ConsumerSecret: c.cfg.ClientSecret,
	})
	if err != nil {
		return nil, &AuthError{Err: eris.Wrap(err, "password flow")}
	}
	return sf, nil
}

// connectRefreshToken exchanges the stored refresh token for an access token
// and binds a session to the returned instance URL.
func (c *sessionClient) connectRefreshToken(ctx context.Context) (*salesforce.Salesforce, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" || c.cfg.RefreshToken == "" {
		return nil, eris.New("missing oauth credentials: client id, client secret, refresh token")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {c.cfg.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.loginURL()+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "token request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		InstanceURL string `json:"instance_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, eris.Wrap(err, "decode token response")
	}
	if tok.InstanceURL == "" {
		tok.InstanceURL = c.cfg.InstanceURL
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return nil, eris.New("token response missing access_token or instance_url")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:      tok.InstanceURL,
		AccessToken: tok.AccessToken,
	})
	if err != nil {
		return nil, eris.Wrap(err, "bind session")
	}
	return sf, nil
}

func (c *sessionClient) loginURL() string {
	if c.cfg.Domain == "test" {
		return "https://test.salesforce.com"
	}
	return "https://login.salesforce.com"
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *sessionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Query runs a SOQL query through the raw REST endpoint so totalSize is
// preserved for COUNT() queries, which return no records.
func (c *sessionClient) Query(ctx context.Context, soql string) (*QueryResult, error) {
	sf, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, &RemoteError{Op: "rate limit", Err: err}
	}

	resp, err := sf.DoRequest(http.MethodGet, "/query?q="+url.QueryEscape(soql), nil)
	if err != nil {
		return nil, classifyRemote("query", soql, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &RemoteError{Op: "decode query", Query: soql, Err: err}
	}
	return &result, nil
}

func (c *sessionClient) Create(ctx context.Context, sObjectName string, fields map[string]any) (string, error) {
	sf, err := c.session(ctx)
	if err != nil {
		return "", err
	}
	if err := c.wait(ctx); err != nil {
		return "", &RemoteError{Op: "rate limit", Err: err}
	}

	result, err := sf.InsertOne(sObjectName, fields)
	if err != nil {
		return "", classifyRemote("create "+sObjectName, "", err)
	}
	if !result.Success {
		return "", &RemoteError{Op: "create " + sObjectName, Err: eris.Errorf("insert failed: %v", result.Errors)}
	}
	return result.Id, nil
}

func (c *sessionClient) Update(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	sf, err := c.session(ctx)
	if err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return &RemoteError{Op: "rate limit", Err: err}
	}

	record := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		record[k] = v
	}
	record["Id"] = id

	if err := sf.UpdateOne(sObjectName, record); err != nil {
		return classifyRemote("update "+sObjectName+" "+id, "", err)
	}
	return nil
}
