package Controllers_test

import (
	"testing"
	"time"

	"BaiXe/Models"
	"BaiXe/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	app, db, _ := newTestApp(t)
	seedAdmin(t, db, "quanly", "matkhau123")

	status, body := doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "quanly",
		"password": "matkhau123",
	}, "")

	require.Equal(t, 200, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	// The issued token opens protected routes.
	status, _ = doJSON(t, app, "GET", "/api/admin/users", nil, token)
	assert.Equal(t, 200, status)
}

func TestLogin_Failures(t *testing.T) {
	app, db, _ := newTestApp(t)
	seedAdmin(t, db, "quanly", "matkhau123")

	status, body := doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "khongco",
		"password": "matkhau123",
	}, "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Tài khoản không tồn tại", body["error"])

	status, body = doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "quanly",
		"password": "sai",
	}, "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Mật khẩu sai", body["error"])
}

func TestVerifyAdmin_RejectsBadCredentials(t *testing.T) {
	app, _, cfg := newTestApp(t)

	// No token.
	status, body := doJSON(t, app, "GET", "/api/admin/users", nil, "")
	assert.Equal(t, 401, status)
	assert.Equal(t, "Không có token", body["error"])

	// Garbage token.
	status, body = doJSON(t, app, "GET", "/api/admin/users", nil, "not-a-token")
	assert.Equal(t, 401, status)
	assert.Equal(t, "Token không hợp lệ", body["error"])

	// Signed with the wrong secret.
	wrong, err := middleware.IssueToken("other-secret", "tester", Models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	status, _ = doJSON(t, app, "GET", "/api/admin/users", nil, wrong)
	assert.Equal(t, 401, status)

	// Expired.
	expired, err := middleware.IssueToken(cfg.JWTSecret, "tester", Models.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	status, _ = doJSON(t, app, "GET", "/api/admin/users", nil, expired)
	assert.Equal(t, 401, status)

	// Valid signature, wrong role.
	staff, err := middleware.IssueToken(cfg.JWTSecret, "tester", "staff", time.Hour)
	require.NoError(t, err)
	status, _ = doJSON(t, app, "GET", "/api/admin/users", nil, staff)
	assert.Equal(t, 401, status)
}
