package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/session"
	"bizdesk/pkg/apierror"
)

// AuthService forwards credentials to the auth backend. The console never
// checks passwords or signatures itself.
type AuthService struct {
	client    *restclient.Client
	loginPath string
	now       func() time.Time
}

func NewAuthService(client *restclient.Client, loginPath string) *AuthService {
	if strings.TrimSpace(loginPath) == "" {
		loginPath = "salogin"
	}

	return &AuthService{client: client, loginPath: loginPath, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := model.Validate(req); err != nil {
		return model.LoginResponse{}, err
	}

	token, err := s.client.Login(ctx, s.loginPath, restclient.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if restclient.IsStatus(err, http.StatusUnauthorized) || restclient.IsStatus(err, http.StatusForbidden) ||
			restclient.IsStatus(err, http.StatusNotFound) {
			return model.LoginResponse{}, apierror.Unauthorized("invalid credentials")
		}
		return model.LoginResponse{}, fmt.Errorf("%w: login: %w", model.ErrUpstreamFailed, err)
	}

	sess, err := session.Parse(token)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("%w: login: %w", model.ErrUpstreamFailed, err)
	}

	return model.LoginResponse{Token: token, Session: s.Describe(sess)}, nil
}

// Describe reports the unverified claims of sess.
func (s *AuthService) Describe(sess session.Session) model.SessionInfo {
	info := model.SessionInfo{
		Subject:  sess.Subject(),
		Email:    sess.Claims.Email,
		Username: sess.Claims.Username,
		Role:     sess.Claims.Role,
		OrgID:    string(sess.Claims.OrgID),
		Expired:  sess.Expired(s.now()),
	}
	if sess.Claims.ExpiresAt != nil {
		info.ExpiresAt = sess.Claims.ExpiresAt.UTC().Format(time.RFC3339)
	}

	return info
}
