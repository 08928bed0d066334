// Package session carries the caller's bearer token and the claims read from
// it. Claims are decoded without verifying the signature: they drive what a
// view shows, never what the backends allow.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed token")

// OrgID accepts both numeric and string organization ids.
type OrgID string

func (o *OrgID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*o = ""
		return nil
	}

	if unquoted, err := strconv.Unquote(raw); err == nil {
		*o = OrgID(unquoted)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*o = OrgID(n.String())
	return nil
}

type Claims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	OrgID    OrgID  `json:"org_id,omitempty"`
	jwt.RegisteredClaims
}

type Session struct {
	Token  string `json:"-"`
	Claims Claims `json:"claims"`
}

// Parse reads the claims out of token. The signature is not checked.
func Parse(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrMalformedToken
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, errors.Join(ErrMalformedToken, err)
	}

	return Session{Token: token, Claims: claims}, nil
}

// FromHeader extracts the bearer token from an Authorization header value.
func FromHeader(header string) (Session, error) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return Session{}, ErrMalformedToken
	}

	return Parse(header[7:])
}

func (s Session) BearerToken() string {
	return s.Token
}

// Subject identifies the session owner: the registered subject when present,
// otherwise the email or username claim.
func (s Session) Subject() string {
	switch {
	case s.Claims.Subject != "":
		return s.Claims.Subject
	case s.Claims.Email != "":
		return s.Claims.Email
	default:
		return s.Claims.Username
	}
}

// Owner keys per-session resources. Tokens without identity claims are keyed
// by the raw token.
func (s Session) Owner() string {
	if subject := s.Subject(); subject != "" {
		return subject
	}

	return s.Token
}

func (s Session) HasRole(roles ...string) bool {
	for _, role := range roles {
		if strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(s.Claims.Role)) {
			return true
		}
	}

	return false
}

func (s Session) Expired(now time.Time) bool {
	if s.Claims.ExpiresAt == nil {
		return false
	}

	return now.After(s.Claims.ExpiresAt.Time)
}

type contextKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
