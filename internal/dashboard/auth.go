package dashboard

import (
	"context"
	"net/http"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
	"github.com/placeboard/placeboard/internal/session"
)

type authResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
	Role         string       `json:"role"`
}

// AuthService signs users in and out and keeps the session store current
type AuthService struct {
	area
	session *session.Store
}

// Login exchanges credentials for tokens and saves the session bundle.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := request.Do[authResponse](ctx, a.exec, request.Config{
		Method: http.MethodPost,
		URL:    loginPath,
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	return a.persist(resp)
}

// Refresh trades the stored refresh token for a new pair and re-saves the
// bundle. The server rotates refresh tokens, so the old one stops working.
func (a *AuthService) Refresh(ctx context.Context) (*models.User, error) {
	refreshToken := a.session.RefreshToken()
	if refreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	resp, err := request.Do[authResponse](ctx, a.exec, request.Config{
		Method: http.MethodPost,
		URL:    "/api/auth/refresh",
		Body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, err
	}
	return a.persist(resp)
}

func (a *AuthService) persist(resp authResponse) (*models.User, error) {
	if !a.session.Save(resp.AccessToken, resp.RefreshToken, resp.User, resp.Role) {
		return nil, ErrSessionNotSaved
	}
	return resp.User, nil
}

// Logout tells the server to revoke the refresh token, then clears the
// local session whether or not the server call succeeded.
func (a *AuthService) Logout(ctx context.Context) {
	if refreshToken := a.session.RefreshToken(); refreshToken != "" {
		_, _ = a.exec.Execute(ctx, request.Config{
			Method: http.MethodPost,
			URL:    "/api/auth/logout",
			Body:   map[string]string{"refresh_token": refreshToken},
		})
	}
	a.session.Clear()
}

// Me fetches the signed-in user from the server
func (a *AuthService) Me(ctx context.Context) (*models.User, error) {
	if !a.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return request.Do[*models.User](ctx, a.exec, request.Config{URL: "/api/auth/me"})
}

// CurrentUser decodes the user cached in the session without a network call
func (a *AuthService) CurrentUser() (*models.User, bool) {
	var user models.User
	if !a.session.DecodeUser(&user) {
		return nil, false
	}
	return &user, true
}
