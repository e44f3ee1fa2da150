package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"BaiXe/Config"
	"BaiXe/FiberConfig"
	"BaiXe/Models"
	"BaiXe/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() *Config.AppConfig {
	return &Config.AppConfig{
		Port:            "0",
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		StaleSessionTTL: 24 * time.Hour,
		LogLevel:        "error",
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestApp builds the full route surface against a per-test in-memory
// database.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *Config.AppConfig) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))

	cfg := testConfig()
	app := FiberConfig.NewApp(db, cfg, testLogger())
	return app, db, cfg
}

// adminToken issues a token the way login would, without the bcrypt round.
func adminToken(t *testing.T, cfg *Config.AppConfig) string {
	t.Helper()
	token, err := middleware.IssueToken(cfg.JWTSecret, "tester", Models.RoleAdmin, cfg.TokenTTL)
	require.NoError(t, err)
	return token
}

func seedAdmin(t *testing.T, db *gorm.DB, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&Models.Admin{
		Username: username,
		Password: string(hash),
		Role:     Models.RoleAdmin,
	}).Error)
}

func seedPerson(t *testing.T, db *gorm.DB, cccd string, vehicles ...Models.Vehicle) {
	t.Helper()
	require.NoError(t, db.Create(&Models.Person{
		Cccd:        cccd,
		FullName:    "Nguyen Van A",
		DateOfBirth: "01/01/1990",
		Gender:      "Nam",
		Hometown:    "Hà Nội",
		IssueDate:   "01/01/2020",
		Vehicles:    vehicles,
	}).Error)
}

// doJSON performs one request and decodes the JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}
