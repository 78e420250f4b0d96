//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/sports-inventory/internal/pkg/httputil"
	"github.com/bissquit/sports-inventory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_Register_Login_Flow(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()

	resp, err := client.POST("/api/register", map[string]string{
		"email":    email,
		"password": testPassword,
		"role":     "user",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered httputil.Envelope
	testutil.DecodeJSON(t, resp, &registered)
	assert.True(t, registered.Success)
	assert.Equal(t, "User registered successfully", registered.Message)

	client.LoginAs(t, email, testPassword)
	assert.NotEmpty(t, client.Token)

	resp, err = client.GET("/api/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Data struct {
			UserID    string    `json:"user_id"`
			Role      string    `json:"role"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, email, me.Data.UserID)
	assert.Equal(t, "user", me.Data.Role)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), me.Data.ExpiresAt, time.Minute)
}

func TestAuth_PasswordStoredAsHash(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()
	client.Register(t, email, testPassword, "admin")

	var hash, role string
	err := testDB.QueryRowxContext(context.Background(),
		"SELECT password_hash, role FROM credentials WHERE email = $1", email).Scan(&hash, &role)
	require.NoError(t, err)

	assert.NotEqual(t, testPassword, hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)
	assert.Equal(t, "admin", role)
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()
	client.Register(t, email, testPassword, "user")

	// Email comparison ignores case.
	resp, err := client.POST("/api/register", map[string]string{
		"email":    strings.ToUpper(email),
		"password": "another-password",
		"role":     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body httputil.Envelope
	testutil.DecodeJSON(t, resp, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "User already exists", body.Error)

	// The original password still works.
	client.LoginAs(t, email, testPassword)
}

func TestAuth_Register_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]string
		wantError string
	}{
		{
			name:      "missing password",
			body:      map[string]string{"email": testutil.RandomEmail(), "role": "user"},
			wantError: "Missing required field: password",
		},
		{
			name:      "unknown role",
			body:      map[string]string{"email": testutil.RandomEmail(), "password": testPassword, "role": "owner"},
			wantError: "Invalid value for field: role",
		},
		{
			name:      "malformed email",
			body:      map[string]string{"email": "not-an-email", "password": testPassword, "role": "user"},
			wantError: "Invalid value for field: email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t)
			resp, err := client.POST("/api/register", tt.body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body httputil.Envelope
			testutil.DecodeJSON(t, resp, &body)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()
	client.Register(t, email, testPassword, "user")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nonexistent@example.com", testPassword},
		{"wrong password", email, "wrong-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.POST("/api/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			var body httputil.Envelope
			testutil.DecodeJSON(t, resp, &body)
			assert.Equal(t, "Invalid email or password", body.Error)
			assert.Empty(t, body.Token)
		})
	}
}

func TestAuth_Logout_RevokesTokenInRedis(t *testing.T) {
	client := newUserClient(t)
	token := client.Token

	resp, err := client.POST("/api/logout", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/api/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body httputil.Envelope
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "Token is invalid or expired", body.Error)

	keys, err := testRedis.Keys(context.Background(), "inventory:revoked:*").Result()
	require.NoError(t, err)
	require.NotEmpty(t, keys)

	for _, key := range keys {
		ttl, err := testRedis.TTL(context.Background(), key).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
		assert.LessOrEqual(t, ttl, 15*time.Minute)
	}

	// The revoked token is rejected on every protected route.
	other := newTestClient(t)
	other.Token = token
	resp, err = other.GET("/api/inventory")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAuth_ProtectedRoutes(t *testing.T) {
	anonymous := newTestClient(t)
	user := newUserClient(t)
	admin := newAdminClient(t)

	tests := []struct {
		name       string
		client     *testutil.Client
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{"anonymous read", anonymous, http.MethodGet, "/api/suppliers", http.StatusUnauthorized, "Token is missing"},
		{"anonymous write", anonymous, http.MethodPost, "/api/add/suppliers", http.StatusUnauthorized, "Token is missing"},
		{"user write", user, http.MethodPost, "/api/add/suppliers", http.StatusForbidden, "Access forbidden: insufficient permissions"},
		{"user delete", user, http.MethodDelete, "/api/delete/suppliers/1", http.StatusForbidden, "Access forbidden: insufficient permissions"},
		{"admin write reaches validation", admin, http.MethodPost, "/api/add/suppliers", http.StatusBadRequest, "Missing required field: supplier_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				resp *http.Response
				err  error
			)
			switch tt.method {
			case http.MethodGet:
				resp, err = tt.client.GET(tt.path)
			case http.MethodPost:
				resp, err = tt.client.POST(tt.path, map[string]string{})
			case http.MethodDelete:
				resp, err = tt.client.DELETE(tt.path)
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body httputil.Envelope
			testutil.DecodeJSON(t, resp, &body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestAuth_TamperedToken(t *testing.T) {
	client := newUserClient(t)
	client.Token = client.Token[:len(client.Token)-2] + "xx"

	resp, err := client.GET("/api/inventory")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body httputil.Envelope
	testutil.DecodeJSON(t, resp, &body)
	assert.Equal(t, "Token is invalid or expired", body.Error)
}
