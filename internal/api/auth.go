// ABOUTME: Login, registration, and token refresh calls.
// ABOUTME: Any failing status on these endpoints is reported as ErrUnauthorized.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the account record returned by registration.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Login exchanges credentials for tokens and stores them on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := c.send(ctx, http.MethodPost, "/login/access-token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), false)
	if err != nil {
		return nil, err
	}
	return c.acceptToken(resp)
}

// RefreshToken trades the stored refresh token for a new token pair.
func (c *Client) RefreshToken(ctx context.Context) (*Token, error) {
	refresh := c.Token().RefreshToken
	if refresh == "" {
		return nil, newError(ErrUnauthorized, 0, "no refresh token", nil)
	}

	resp, err := c.postJSON(ctx, "/login/refresh-token", map[string]string{"refresh_token": refresh}, false)
	if err != nil {
		return nil, err
	}
	return c.acceptToken(resp)
}

func (c *Client) acceptToken(resp *response) (*Token, error) {
	if !isSuccess(resp.status) {
		return nil, statusError(resp, ErrUnauthorized)
	}
	var tok Token
	if err := decode(resp, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errMissingField(resp.status, "access_token")
	}
	if tok.TokenType == "" {
		tok.TokenType = "bearer"
	}
	c.SetToken(tok)
	return &tok, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// Register creates an account. name may be empty.
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	resp, err := c.postJSON(ctx, "/users/", registerRequest{Email: email, Password: password, FullName: name}, false)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, statusError(resp, ErrUnauthorized)
	}
	var u User
	if err := decode(resp, &u); err != nil {
		return nil, err
	}
	if u.Email == "" {
		return nil, errMissingField(resp.status, "email")
	}
	return &u, nil
}

// TokenExpiry reads the exp claim of an access token without verifying it.
func TokenExpiry(accessToken string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, newError(ErrDecode, 0, "access token", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, newError(ErrDecode, 0, "access token", errors.New("missing exp claim"))
	}
	return claims.ExpiresAt.Time, nil
}
