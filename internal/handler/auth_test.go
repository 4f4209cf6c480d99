package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git21git/travelplanner/internal/auth"
	"github.com/git21git/travelplanner/internal/domain"
	"github.com/git21git/travelplanner/internal/handler"
	"github.com/git21git/travelplanner/internal/service"
)

func userFixture() domain.User {
	return domain.User{
		ID:           callerID,
		Username:     "marie",
		Email:        "marie@example.com",
		PasswordHash: "$2a$12$secret",
		CreatedAt:    time.Now().UTC(),
	}
}

func authHandler(svc *mockAuthServicer) http.Handler {
	return newHTTPHandler(handler.Deps{Auth: svc})
}

func TestRegister_201_NoPasswordHashInBody(t *testing.T) {
	svc := &mockAuthServicer{
		register: func(_ context.Context, username, email, password string) (domain.User, error) {
			assert.Equal(t, "marie", username)
			assert.Equal(t, "marie@example.com", email)
			assert.Equal(t, "s3cret!", password)
			return userFixture(), nil
		},
	}

	req := newRequest(t, http.MethodPost, "/auth/register", map[string]any{
		"username": "marie", "email": "marie@example.com", "password": "s3cret!",
	})
	rec := serve(authHandler(svc), req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	var resp handler.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, callerID, resp.ID)
}

func TestRegister_409_Conflict(t *testing.T) {
	svc := &mockAuthServicer{
		register: func(_ context.Context, _, _, _ string) (domain.User, error) {
			return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", domain.ErrConflict)
		},
	}

	req := newRequest(t, http.MethodPost, "/auth/register", map[string]any{
		"username": "marie", "email": "marie@example.com", "password": "s3cret!",
	})
	rec := serve(authHandler(svc), req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Code)
}

func TestLogin_200_SetsCookie(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	svc := &mockAuthServicer{
		login: func(_ context.Context, _, _ string) (service.Session, error) {
			return service.Session{User: userFixture(), Token: "jwt", ExpiresAt: exp}, nil
		},
	}

	req := newRequest(t, http.MethodPost, "/auth/login", map[string]any{
		"email": "marie@example.com", "password": "s3cret!",
	})
	rec := serve(authHandler(svc), req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "jwt", resp.Token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, "jwt", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_401_BadCredentials(t *testing.T) {
	svc := &mockAuthServicer{
		login: func(_ context.Context, _, _ string) (service.Session, error) {
			return service.Session{}, domain.ErrUnauthorized
		},
	}

	req := newRequest(t, http.MethodPost, "/auth/login", map[string]any{"email": "x@example.com", "password": "nope"})
	rec := serve(authHandler(svc), req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogout_204_ExpiresCookie(t *testing.T) {
	rec := serve(authHandler(&mockAuthServicer{}), newRequest(t, http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestGetMe_200(t *testing.T) {
	svc := &mockAuthServicer{
		me: func(_ context.Context, id domain.Identity) (domain.User, error) {
			require.Equal(t, callerID, id.UserID)
			return userFixture(), nil
		},
	}

	rec := do(t, authHandler(svc), http.MethodGet, "/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMe_CookieAuth(t *testing.T) {
	svc := &mockAuthServicer{
		me: func(_ context.Context, _ domain.Identity) (domain.User, error) { return userFixture(), nil },
	}
	req := newRequest(t, http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: goodToken})

	rec := serve(authHandler(svc), req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMe_401_BadToken(t *testing.T) {
	req := newRequest(t, http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer forged")

	rec := serve(authHandler(&mockAuthServicer{}), req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
}
