package tableau

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const authHeader = "X-Tableau-Auth"

// Session is a signed-in handle bound to one site.
type Session struct {
	client *Client

	Token          string
	SiteID         string
	SiteContentURL string
	UserID         string
	APIVersion     string
}

// Intercept sets the session token on req.
func (s *Session) Intercept(ctx context.Context, req *http.Request) error {
	req.Header.Set(authHeader, s.Token)
	return nil
}

// SignIn exchanges a personal access token for a session on auth.SiteURL.
// The API version must be set (see UseServerVersion).
func (c *Client) SignIn(ctx context.Context, auth PersonalAccessTokenAuth) (*Session, error) {
	if err := checkPATVersion(c.APIVersion); err != nil {
		return nil, err
	}
	body := signInRequest{Credentials: signInCredentials{
		PersonalAccessTokenName:   auth.TokenName,
		PersonalAccessTokenSecret: auth.TokenValue,
		Site:                      siteRef{ContentURL: auth.SiteURL},
	}}
	req, err := c.newRequest(ctx, http.MethodPost, c.APIVersion, "/auth/signin", nil, body)
	if err != nil {
		return nil, err
	}
	var resp signInResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to sign in as %s: %w", auth.TokenName, err)
	}
	if resp.Credentials.Token == "" {
		return nil, fmt.Errorf("failed to sign in as %s: %w: no token returned", auth.TokenName, ErrAuthentication)
	}
	c.logger.Debug("signed in",
		zap.String("site_id", resp.Credentials.Site.ID),
		zap.String("site_url", resp.Credentials.Site.ContentURL))
	return &Session{
		client:         c,
		Token:          resp.Credentials.Token,
		SiteID:         resp.Credentials.Site.ID,
		SiteContentURL: resp.Credentials.Site.ContentURL,
		UserID:         resp.Credentials.User.ID,
		APIVersion:     c.APIVersion,
	}, nil
}

// SignOut invalidates the session token.
func (s *Session) SignOut(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodPost, "/auth/signout", nil, nil)
	if err != nil {
		return err
	}
	if err := s.client.do(req, nil); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *Session) newRequest(ctx context.Context, method, operationPath string, query url.Values, body any) (*http.Request, error) {
	req, err := s.client.newRequest(ctx, method, s.APIVersion, operationPath, query, body)
	if err != nil {
		return nil, err
	}
	if err := s.Intercept(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// WithSession signs in, runs fn with the session and signs out on every
// exit path, including when fn fails or panics. A sign-out failure is
// logged and never replaces fn's result.
func (c *Client) WithSession(ctx context.Context, auth PersonalAccessTokenAuth, fn func(ctx context.Context, s *Session) error) error {
	session, err := c.SignIn(ctx, auth)
	if err != nil {
		return err
	}
	defer func() {
		// ctx may already be cancelled; sign-out still has to reach the server.
		if err := session.SignOut(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("sign-out failed", zap.Error(err))
		}
	}()
	return fn(ctx, session)
}
