package restclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrNoToken = errors.New("login response carried no token")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Login posts credentials to the auth service's login path and returns the
// issued token.
func (c *Client) Login(ctx context.Context, loginPath string, creds Credentials) (string, error) {
	var out loginResponse
	decoded, err := c.Do(ctx, http.MethodPost, ResourcePath(loginPath), creds, &out)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(out.Token)
	if token == "" {
		token = strings.TrimSpace(out.AccessToken)
	}
	if !decoded || token == "" {
		return "", ErrNoToken
	}

	return token, nil
}
