package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

const defaultRemoteTimeout = 10 * time.Second

// RemoteOpts configures a [RemoteProvider].
type RemoteOpts struct {
	BaseURL    string       // e.g. https://project.example.com/auth/v1
	APIKey     string       // sent as the apikey header on every request
	HTTPClient *http.Client // default: a client with a 10s timeout
}

// RemoteProvider implements [SessionProvider] against a hosted identity service using the GoTrue HTTP API.
//
// Access tokens are attached with [oauth2.StaticTokenSource]; refresh is left to the next login.
type RemoteProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type remoteTokenResponse struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
	RefreshToken string     `json:"refresh_token"`
	User         remoteUser `json:"user"`
}

// remoteSignupResponse covers both shapes the API returns: a bare user when email confirmation is pending,
// or a full token response when the account is confirmed automatically.
type remoteSignupResponse struct {
	remoteUser
	User *remoteUser `json:"user"`
}

// NewRemoteProvider creates a [RemoteProvider].
func NewRemoteProvider(opts RemoteOpts) (*RemoteProvider, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: remote auth provider requires a base URL", shared.ErrMissingConfig)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultRemoteTimeout}
	}

	return &RemoteProvider{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
	}, nil
}

// Name returns the provider name.
func (p *RemoteProvider) Name() string {
	return "remote"
}

// Signup registers an identity. The service may require email confirmation before the account can log in.
func (p *RemoteProvider) Signup(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	var resp remoteSignupResponse
	status, err := p.do(ctx, p.httpClient, http.MethodPost, "/signup", credentialsForm{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", shared.ErrEmailTaken, email)
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%w: signup returned status %d", shared.ErrAuthFailed, status)
	}

	u := resp.remoteUser
	if resp.User != nil {
		u = *resp.User
	}
	return &models.Identity{ID: u.ID, Email: u.Email}, nil
}

// Login performs the password grant.
func (p *RemoteProvider) Login(ctx context.Context, email, password string) (*Credentials, error) {
	var resp remoteTokenResponse
	body := credentialsForm{Email: email, Password: password}
	status, err := p.do(ctx, p.httpClient, http.MethodPost, "/token?grant_type=password", body, &resp)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return nil, shared.ErrInvalidCredentials
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%w: token endpoint returned status %d", shared.ErrAuthFailed, status)
	case resp.AccessToken == "":
		return nil, fmt.Errorf("%w: token endpoint returned no access token", shared.ErrAuthFailed)
	}

	token := &oauth2.Token{AccessToken: resp.AccessToken, TokenType: resp.TokenType, RefreshToken: resp.RefreshToken}
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return &Credentials{
		Token:     token.AccessToken,
		User:      models.Identity{ID: resp.User.ID, Email: resp.User.Email},
		ExpiresAt: token.Expiry,
	}, nil
}

// Current fetches the user the access token belongs to.
func (p *RemoteProvider) Current(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var u remoteUser
	status, err := p.do(ctx, p.bearerClient(ctx, token), http.MethodGet, "/user", nil, &u)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, shared.ErrNotAuthenticated
	case status < 200 || status >= 300:
		return nil, fmt.Errorf("%w: user endpoint returned status %d", shared.ErrAuthFailed, status)
	}

	return &models.Identity{ID: u.ID, Email: u.Email}, nil
}

// Logout revokes the access token. Tokens the service no longer recognises count as logged out.
func (p *RemoteProvider) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	status, err := p.do(ctx, p.bearerClient(ctx, token), http.MethodPost, "/logout", nil, nil)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized || status == http.StatusNotFound || (status >= 200 && status < 300) {
		return nil
	}
	return fmt.Errorf("%w: logout returned status %d", shared.ErrAuthFailed, status)
}

func (p *RemoteProvider) bearerClient(ctx context.Context, token string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

// do sends a JSON request and decodes a 2xx JSON response into result. Non-2xx statuses are returned for the
// caller to map; only transport and decoding failures are errors.
func (p *RemoteProvider) do(ctx context.Context, client *http.Client, method, path string, body, result any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || result == nil {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}
