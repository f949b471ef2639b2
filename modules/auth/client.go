package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/llenroc/mvpapi/common"
	"github.com/llenroc/mvpapi/common/model"
)

// Live ID endpoints. Desktop-style apps use the fixed desktop redirect.
const (
	DefaultTokenURL    = "https://login.live.com/oauth20_token.srf"
	DefaultRedirectURL = "https://login.live.com/oauth20_desktop.srf"
)

// legacyClientIDPrefix marks applications registered under the old Live SDK
// portal. Those apps send "lc:<id>" and no client secret.
const legacyClientIDPrefix = "lc:"

// tokenResponse is the wire shape of a successful token exchange.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

type liveAuthClient struct {
	httpClient  common.HttpClient
	identity    model.ClientIdentity
	tokenURL    string
	redirectURL string
	logger      zerolog.Logger
	now         func() time.Time
}

// Option adjusts a liveAuthClient.
type Option func(*liveAuthClient)

// WithTokenURL points the client at a different token endpoint. Used in tests.
func WithTokenURL(u string) Option {
	return func(c *liveAuthClient) { c.tokenURL = u }
}

// WithRedirectURL overrides the redirect URI sent with the exchange.
func WithRedirectURL(u string) Option {
	return func(c *liveAuthClient) { c.redirectURL = u }
}

// WithLogger attaches a logger; default is a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *liveAuthClient) { c.logger = l }
}

// NewLiveAuthClient builds an AuthClient that exchanges refresh tokens at the
// Live ID token endpoint.
func NewLiveAuthClient(httpClient common.HttpClient, identity model.ClientIdentity, opts ...Option) common.AuthClient {
	c := &liveAuthClient{
		httpClient:  httpClient,
		identity:    identity,
		tokenURL:    DefaultTokenURL,
		redirectURL: DefaultRedirectURL,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RefreshToken performs one refresh-token grant. Transient 5xx responses from
// the token endpoint are retried with backoff inside this single logical
// exchange; auth rejections are not.
func (c *liveAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token to exchange")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("redirect_uri", c.redirectURL)
	if c.identity.IsLegacyApp {
		form.Set("client_id", legacyClientIDPrefix+c.identity.ClientID)
	} else {
		form.Set("client_id", c.identity.ClientID)
		form.Set("client_secret", c.identity.ClientSecret)
	}
	encoded := form.Encode()

	operation := func() (interface{}, error) {
		return c.exchange(ctx, encoded)
	}
	result, err := c.httpClient.RetryWithExponentialBackoff(operation)
	if err != nil {
		c.logger.Warn().Err(err).Msg("refresh token exchange failed")
		return nil, err
	}
	return result.(*oauth2.Token), nil
}

// exchange posts the form once and parses the token response.
func (c *liveAuthClient) exchange(ctx context.Context, form string) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &common.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	var tr tokenResponse
	if err := model.JSONUnmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	// some exchanges omit the refresh token; keep using the old one
	if tok.RefreshToken == "" {
		tok.RefreshToken = formValue(form, "refresh_token")
	}
	return tok, nil
}

func formValue(encoded, key string) string {
	values, err := url.ParseQuery(encoded)
	if err != nil {
		return ""
	}
	return values.Get(key)
}
