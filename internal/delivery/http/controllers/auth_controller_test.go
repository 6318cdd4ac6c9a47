package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger so controller tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	registerErr     error
	loginErr        error
	logoutErr       error
	getByIDErr      error
	result          *domain.AuthResult
	user            *domain.User
	lastOldSession  string
	lastLogoutToken string
}

func (f *fakeUserService) Register(ctx context.Context, username, password, role, oldSession string) (*domain.AuthResult, error) {
	f.lastOldSession = oldSession
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.result, nil
}

func (f *fakeUserService) Login(ctx context.Context, username, password, oldSession string) (*domain.AuthResult, error) {
	f.lastOldSession = oldSession
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result, nil
}

func (f *fakeUserService) Logout(ctx context.Context, sessionToken string) error {
	f.lastLogoutToken = sessionToken
	return f.logoutErr
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.user, nil
}

func authResult() *domain.AuthResult {
	return &domain.AuthResult{
		User:         &domain.User{ID: "user-1", Username: "alice", Role: domain.RoleUser},
		SessionToken: "sess-token",
		BearerToken:  "bearer-token",
	}
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthController_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"username":"alice","password":"longenough","role":"user"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing username",
			body:           `{"password":"longenough"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "username is required",
		},
		{
			name:           "unknown field rejected",
			body:           `{"username":"alice","password":"longenough","admin":true}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "username taken",
			body:           `{"username":"alice","password":"longenough"}`,
			fakeErr:        domain.ErrUsernameTaken,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "username already exists",
		},
		{
			name:           "weak password",
			body:           `{"username":"alice","password":"short"}`,
			fakeErr:        domain.ErrInvalidInput,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid input",
		},
		{
			name:           "service error",
			body:           `{"username":"alice","password":"longenough"}`,
			fakeErr:        errors.New("db down"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{registerErr: tt.fakeErr, result: authResult()}
			ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				cookie := sessionCookie(t, rr)
				require.NotNil(t, cookie, "session cookie must be set")
				assert.Equal(t, "sess-token", cookie.Value)
				assert.True(t, cookie.HttpOnly)
				assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var payload AuthPayload
				require.NoError(t, json.Unmarshal(dataBytes, &payload))
				assert.Equal(t, "alice", payload.User.Username)
				assert.Equal(t, "bearer-token", payload.Token)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"username":"alice","password":"longenough"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:           "invalid credentials",
			body:           `{"username":"alice","password":"wrong"}`,
			fakeErr:        domain.ErrInvalidCredentials,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "invalid username or password",
		},
		{
			name:           "missing password",
			body:           `{"username":"alice"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "password is required",
		},
		{
			name:           "service error",
			body:           `{"username":"alice","password":"longenough"}`,
			fakeErr:        errors.New("db down"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{loginErr: tt.fakeErr, result: authResult()}
			ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				cookie := sessionCookie(t, rr)
				require.NotNil(t, cookie)
				assert.Equal(t, "sess-token", cookie.Value)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
		})
	}
}

func TestAuthController_Login_PassesExistingSession(t *testing.T) {
	fake := &fakeUserService{result: authResult()}
	ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"alice","password":"longenough"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "old-session"})
	rr := httptest.NewRecorder()

	ctrl.Login(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "old-session", fake.lastOldSession, "existing session handed to the service for destruction")
}

func TestAuthController_Logout(t *testing.T) {
	t.Run("success clears cookie", func(t *testing.T) {
		fake := &fakeUserService{}
		ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-token"})
		rr := httptest.NewRecorder()

		ctrl.Logout(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "sess-token", fake.lastLogoutToken)
		cookie := sessionCookie(t, rr)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
	})

	t.Run("service error", func(t *testing.T) {
		fake := &fakeUserService{logoutErr: errors.New("db down")}
		ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rr := httptest.NewRecorder()

		ctrl.Logout(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestAuthController_Me(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeUserService{user: &domain.User{ID: "user-1", Username: "alice", Role: domain.RoleUser}}
		ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-1"))
		rr := httptest.NewRecorder()

		ctrl.Me(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
	})

	t.Run("no identity", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{}, 24*time.Hour, false)
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()

		ctrl.Me(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("stale identity", func(t *testing.T) {
		fake := &fakeUserService{getByIDErr: domain.ErrUserNotFound}
		ctrl := NewAuthController(testLogger, fake, 24*time.Hour, false)
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-deleted"))
		rr := httptest.NewRecorder()

		ctrl.Me(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
