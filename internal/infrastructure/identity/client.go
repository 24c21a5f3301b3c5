// Package identity implements the auth-service collaborator over HTTP.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"jobboard/internal/domain"
	domainidentity "jobboard/internal/domain/identity"
)

// Client talks to the auth service. Every call carries the request context
// and is additionally bounded by the client timeout, so an unreachable
// auth service fails fast instead of stalling request handling.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CurrentUser(ctx context.Context, token string) (domainidentity.Caller, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return domainidentity.Caller{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domainidentity.Caller{}, domain.NewDependencyUnavailableError("auth service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domainidentity.Caller{}, domain.NewAuthenticationError("invalid or expired credential")
	default:
		return domainidentity.Caller{}, domain.NewDependencyUnavailableError(
			fmt.Sprintf("auth service returned status %d", resp.StatusCode))
	}

	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domainidentity.Caller{}, domain.NewDependencyUnavailableError("auth service returned malformed body")
	}

	return domainidentity.Caller{
		ID:       body.ID,
		Username: body.Username,
		Email:    body.Email,
		Role:     domainidentity.Role(body.Role),
	}, nil
}

func (c *Client) SubscribedUsers(ctx context.Context, category string) ([]domainidentity.Subscriber, error) {
	u := c.baseURL + "/api/auth/preferences/subscribed-users/" + url.PathEscape(category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewDependencyUnavailableError("auth service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDependencyUnavailableError(
			fmt.Sprintf("subscription lookup returned status %d", resp.StatusCode))
	}

	var subs []domainidentity.Subscriber
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, domain.NewDependencyUnavailableError("subscription lookup returned malformed body")
	}
	return subs, nil
}
