package lastfm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// AuthService provides authentication operations for the Last.fm API.
type AuthService struct {
	client *Client
}

// authURL is the page where users authorize a desktop token.
const authURL = webURL + "/api/auth/"

type xmlSession struct {
	Name       string `xml:"name"`
	Key        string `xml:"key"`
	Subscriber string `xml:"subscriber"`
}

// GetToken requests an authentication token from Last.fm.
//
// This is the first step in the authentication flow. After obtaining a token,
// the user must authorize it by visiting the URL returned by GetAuthURL.
//
// Example:
//
//	token, err := client.Auth().GetToken(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Visit:", client.Auth().GetAuthURL(token.Token))
func (a *AuthService) GetToken(ctx context.Context) (*Token, error) {
	inner, err := a.client.post(ctx, "auth.getToken", Params{}, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token string `xml:"token"`
	}
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse token response: %w", err)
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token in response", ErrNotFound)
	}
	return &Token{Token: token}, nil
}

// GetAuthURL returns the URL where users authorize the token.
//
// After calling GetToken, direct the user to this URL to authorize
// the application. Once authorized, call GetSession to exchange the
// token for a session key.
func (a *AuthService) GetAuthURL(token string) string {
	q := url.Values{}
	q.Set("api_key", a.client.apiKey)
	q.Set("token", token)
	return authURL + "?" + q.Encode()
}

// GetSession exchanges an authorized token for a session key.
//
// The session key does not expire. Store it and pass it as
// Config.SessionKey, or call SetSessionKey, for authenticated requests.
//
// Example:
//
//	session, err := client.Auth().GetSession(ctx, token.Token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.SetSessionKey(session.Key)
func (a *AuthService) GetSession(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token required", ErrInvalidArgument)
	}
	return a.session(ctx, "auth.getSession", Params{"token": token})
}

// GetMobileSession exchanges a username and password for a session key,
// skipping the browser step.
func (a *AuthService) GetMobileSession(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrInvalidArgument)
	}
	return a.session(ctx, "auth.getMobileSession", Params{"username": username, "password": password})
}

func (a *AuthService) session(ctx context.Context, method string, params Params) (*Session, error) {
	inner, err := a.client.post(ctx, method, params, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Session xmlSession `xml:"session"`
	}
	if err := unmarshalInner(inner, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse session response: %w", err)
	}

	s := resp.Session
	session := &Session{
		Key:        strings.TrimSpace(s.Key),
		Username:   strings.TrimSpace(s.Name),
		Subscriber: flag(s.Subscriber),
	}
	if session.Key == "" {
		return nil, fmt.Errorf("%w: empty session key in response", ErrNotFound)
	}
	return session, nil
}
