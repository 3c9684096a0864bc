package salesforce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc lets tests stub the token exchange without a listener.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func stubHTTP(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func TestConnect(t *testing.T) {
	t.Run("no credentials at all is an auth error", func(t *testing.T) {
		c := NewClient(Config{})

		err := c.Connect(context.Background())
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, err.Error(), "missing oauth credentials")
	})

	t.Run("rejected refresh token without password fallback is an auth error", func(t *testing.T) {
		hc := stubHTTP(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "https://login.salesforce.com/services/oauth2/token", req.URL.String())
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       http.NoBody,
				Header:     make(http.Header),
			}, nil
		})
		c := NewClient(Config{
			ClientID:     "id",
			ClientSecret: "secret",
			RefreshToken: "stale",
		}, WithHTTPClient(hc))

		err := c.Connect(context.Background())
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, err.Error(), "token endpoint returned 400")
	})

	t.Run("token exchange posts the refresh grant", func(t *testing.T) {
		var gotForm string
		hc := stubHTTP(func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			gotForm = string(body)
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       http.NoBody,
				Header:     make(http.Header),
			}, nil
		})
		c := NewClient(Config{
			ClientID:     "id",
			ClientSecret: "secret",
			RefreshToken: "tok",
		}, WithHTTPClient(hc))

		_ = c.Connect(context.Background())
		assert.Contains(t, gotForm, "grant_type=refresh_token")
		assert.Contains(t, gotForm, "refresh_token=tok")
	})

	t.Run("empty token response is rejected", func(t *testing.T) {
		hc := stubHTTP(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       http.NoBody,
				Header:     make(http.Header),
			}, nil
		})
		c := NewClient(Config{
			ClientID:     "id",
			ClientSecret: "secret",
			RefreshToken: "tok",
		}, WithHTTPClient(hc))

		err := c.Connect(context.Background())
		var authErr *AuthError
		assert.ErrorAs(t, err, &authErr)
	})
}

func TestLoginURL(t *testing.T) {
	prod := &sessionClient{cfg: Config{Domain: "login"}}
	assert.Equal(t, "https://login.salesforce.com", prod.loginURL())

	sandbox := &sessionClient{cfg: Config{Domain: "test"}}
	assert.Equal(t, "https://test.salesforce.com", sandbox.loginURL())

	unset := &sessionClient{}
	assert.Equal(t, "https://login.salesforce.com", unset.loginURL())
}

func TestWait(t *testing.T) {
	t.Run("no limiter never blocks", func(t *testing.T) {
		c := &sessionClient{}
		assert.NoError(t, c.wait(context.Background()))
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		c := &sessionClient{}
		WithRateLimit(1)(c)
		require.NotNil(t, c.limiter)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, c.wait(context.Background()))
		assert.Error(t, c.wait(ctx))
	})
}

func TestQueryResultDecode(t *testing.T) {
	t.Run("count query preserves totalSize with no records", func(t *testing.T) {
		raw := `{"totalSize": 42, "done": true, "records": []}`
		var result QueryResult
		require.NoError(t, json.Unmarshal([]byte(raw), &result))
		assert.Equal(t, 42, result.TotalSize)
		assert.True(t, result.Done)
		assert.Empty(t, result.Records)
	})

	t.Run("row query decodes loosely typed records", func(t *testing.T) {
		raw := `{"totalSize": 1, "done": true, "records": [
			{"attributes": {"type": "Contact"}, "Name": "Ada Lovelace",
			 "LifetimeGiving": {"records": [{"total": 12000}]}}
		]}`
		var result QueryResult
		require.NoError(t, json.Unmarshal([]byte(raw), &result))
		require.Len(t, result.Records, 1)
		assert.Equal(t, "Ada Lovelace", result.Records[0]["Name"])
	})
}
