package identity_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain"
	domainidentity "jobboard/internal/domain/identity"
	"jobboard/internal/infrastructure/identity"
)

func TestClient_CurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u-1","username":"alice","email":"alice@test","role":"JOB_SEEKER"}`))
	}))
	defer srv.Close()

	c := identity.NewClient(srv.URL, time.Second)

	caller, err := c.CurrentUser(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.Equal(t, domainidentity.Caller{
		ID:       "u-1",
		Username: "alice",
		Email:    "alice@test",
		Role:     domainidentity.RoleJobSeeker,
	}, caller)
}

func TestClient_CurrentUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := identity.NewClient(srv.URL, time.Second)

	_, err := c.CurrentUser(context.Background(), "bad-token")

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrorCodeAuthentication, de.Code)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
}

func TestClient_CurrentUser_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := identity.NewClient(srv.URL, time.Second)

	_, err := c.CurrentUser(context.Background(), "tok-123")

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrorCodeDependency, de.Code)
}

func TestClient_CurrentUser_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := identity.NewClient(srv.URL, 100*time.Millisecond)

	_, err := c.CurrentUser(context.Background(), "tok-123")

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrorCodeDependency, de.Code)
	assert.Equal(t, http.StatusServiceUnavailable, de.HTTPStatus)
}

func TestClient_SubscribedUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/preferences/subscribed-users/ENGINEERING", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"userId":"u-1","username":"alice","email":"alice@test"},
			{"userId":"u-2","username":"bob","email":"bob@test"}
		]`))
	}))
	defer srv.Close()

	c := identity.NewClient(srv.URL, time.Second)

	subs, err := c.SubscribedUsers(context.Background(), "ENGINEERING")

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "alice@test", subs[0].Email)
	assert.Equal(t, "bob@test", subs[1].Email)
}

func TestClient_SubscribedUsers_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := identity.NewClient(srv.URL, time.Second)

	_, err := c.SubscribedUsers(context.Background(), "ENGINEERING")

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrorCodeDependency, de.Code)
}
