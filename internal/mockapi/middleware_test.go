package mockapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"bearer token", "Bearer abc.def", "abc.def", nil},
		{"no header", "", "", errNoCredentials},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", errNotBearer},
		{"scheme only", "Bearer", "", errNotBearer},
		{"lowercase scheme", "bearer abc", "", errNotBearer},
		{"blank token", "Bearer ", "", errBlankToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRejectCredentials_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errNoCredentials, "Missing authorization header"},
		{errNotBearer, "Invalid authorization header format"},
		{errBlankToken, "Empty token"},
		{errors.Join(errRejectedToken, ErrWrongTokenType), "Invalid or expired token"},
		{errors.Join(errUnknownUser, gorm.ErrRecordNotFound), "User not found"},
		{errors.New("anything else"), "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

			rejectCredentials(c, zerolog.Nop(), tt.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.want, message(t, rec))
		})
	}
}

func TestRequireCaller_HeaderFormats(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		header string
		want   string
	}{
		{"Basic dXNlcjpwYXNz", "Invalid authorization header format"},
		{"Bearer ", "Empty token"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			env.server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.want, message(t, rec))
		})
	}
}

func TestRequireRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/companies", env.token(t, recruiterEmail), map[string]string{"name": "Acme"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not have access to this resource", message(t, rec))
}
