package Controllers_test

import (
	"strconv"
	"testing"
	"time"

	"BaiXe/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(n int) string { return strconv.Itoa(n) }

func TestInventory_FullSession(t *testing.T) {
	app, db, cfg := newTestApp(t)
	token := adminToken(t, cfg)

	// Three vehicles parked.
	seedPerson(t, db, "111111111111", Models.Vehicle{LicensePlate: "29A111111", Status: Models.StatusParked})
	seedPerson(t, db, "222222222222", Models.Vehicle{LicensePlate: "29A122222", Status: Models.StatusParked})
	seedPerson(t, db, "333333333333", Models.Vehicle{LicensePlate: "29A133333", Status: Models.StatusParked})

	status, body := doJSON(t, app, "POST", "/api/admin/inventory/start", map[string]string{
		"sessionName": "Kiểm kê tối",
	}, token)
	require.Equal(t, 200, status)
	sessionID := int(body["sessionId"].(float64))
	require.NotZero(t, sessionID)

	// Staff find the first and third bikes.
	for _, plate := range []string{"29A111111", "29A133333"} {
		status, _ = doJSON(t, app, "POST", "/api/admin/inventory/check", map[string]interface{}{
			"sessionId":    sessionID,
			"licensePlate": plate,
		}, token)
		require.Equal(t, 200, status)
	}

	status, body = doJSON(t, app, "POST", "/api/admin/inventory/end/"+itoa(sessionID), nil, token)
	require.Equal(t, 200, status)

	report := body["report"].(map[string]interface{})
	assert.Equal(t, float64(3), report["totalVehicles"])
	assert.Equal(t, float64(2), report["checkedVehicles"])
	assert.Equal(t, float64(1), report["uncheckedVehicles"])
	unchecked := report["uncheckedLicensePlates"].([]interface{})
	require.Len(t, unchecked, 1)
	assert.Equal(t, "29A122222", unchecked[0])

	// Session is completed with the report persisted.
	var session Models.InventorySession
	require.NoError(t, db.First(&session, sessionID).Error)
	assert.Equal(t, Models.SessionCompleted, session.Status)
	assert.NotNil(t, session.EndedAt)
	assert.NotEmpty(t, session.Report)
}

func TestInventory_RescanOverwrites(t *testing.T) {
	app, db, cfg := newTestApp(t)
	token := adminToken(t, cfg)
	seedPerson(t, db, "111111111111", Models.Vehicle{LicensePlate: "29A111111", Status: Models.StatusParked})

	status, body := doJSON(t, app, "POST", "/api/admin/inventory/start", map[string]string{}, token)
	require.Equal(t, 200, status)
	sessionID := int(body["sessionId"].(float64))

	status, _ = doJSON(t, app, "POST", "/api/admin/inventory/check", map[string]interface{}{
		"sessionId":    sessionID,
		"licensePlate": "29A111111",
	}, token)
	require.Equal(t, 200, status)

	status, _ = doJSON(t, app, "POST", "/api/admin/inventory/check", map[string]interface{}{
		"sessionId":    sessionID,
		"licensePlate": "29A111111",
		"status":       Models.RecordDamaged,
		"notes":        "vỡ gương",
	}, token)
	require.Equal(t, 200, status)

	// One row per (session, plate), updated in place.
	var records []Models.InventoryRecord
	require.NoError(t, db.Where("session_id = ?", sessionID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, Models.RecordDamaged, records[0].Status)
	assert.Equal(t, "vỡ gương", records[0].Notes)
}

func TestInventory_CheckRequiresActiveSession(t *testing.T) {
	app, db, cfg := newTestApp(t)
	token := adminToken(t, cfg)
	seedPerson(t, db, "111111111111", Models.Vehicle{LicensePlate: "29A111111", Status: Models.StatusParked})

	status, body := doJSON(t, app, "POST", "/api/admin/inventory/start", map[string]string{}, token)
	require.Equal(t, 200, status)
	sessionID := int(body["sessionId"].(float64))

	status, _ = doJSON(t, app, "POST", "/api/admin/inventory/end/"+itoa(sessionID), nil, token)
	require.Equal(t, 200, status)

	// Completed is terminal: no more checks, no second end.
	status, body = doJSON(t, app, "POST", "/api/admin/inventory/check", map[string]interface{}{
		"sessionId":    sessionID,
		"licensePlate": "29A111111",
	}, token)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Phiên kiểm kê không hợp lệ hoặc đã kết thúc", body["error"])

	status, _ = doJSON(t, app, "POST", "/api/admin/inventory/end/"+itoa(sessionID), nil, token)
	assert.Equal(t, 400, status)
}

func TestInventory_CheckStoreError(t *testing.T) {
	app, db, cfg := newTestApp(t)
	token := adminToken(t, cfg)

	// A broken store is a server fault, not a client one.
	require.NoError(t, db.Migrator().DropTable(&Models.InventorySession{}))

	status, body := doJSON(t, app, "POST", "/api/admin/inventory/check", map[string]interface{}{
		"sessionId":    1,
		"licensePlate": "29A111111",
	}, token)
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"].(string), "Lỗi server")
}

func TestInventory_EndUnknownSession(t *testing.T) {
	app, _, cfg := newTestApp(t)
	token := adminToken(t, cfg)

	status, body := doJSON(t, app, "POST", "/api/admin/inventory/end/9999", nil, token)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Không tìm thấy phiên kiểm kê", body["error"])
}

func TestInventory_RetrievedPlatesExcludedFromReport(t *testing.T) {
	app, db, cfg := newTestApp(t)
	token := adminToken(t, cfg)

	seedPerson(t, db, "111111111111", Models.Vehicle{LicensePlate: "29A111111", Status: Models.StatusParked})
	seedPerson(t, db, "222222222222", Models.Vehicle{LicensePlate: "29A122222", Status: Models.StatusRetrieved})

	status, body := doJSON(t, app, "POST", "/api/admin/inventory/start", map[string]string{}, token)
	require.Equal(t, 200, status)
	sessionID := int(body["sessionId"].(float64))

	// Staff mistakenly scan the retrieved bike too.
	for _, plate := range []string{"29A111111", "29A122222"} {
		status, _ = doJSON(t, app, "POST", "/api/admin/inventory/check", map[string]interface{}{
			"sessionId":    sessionID,
			"licensePlate": plate,
		}, token)
		require.Equal(t, 200, status)
	}

	status, body = doJSON(t, app, "POST", "/api/admin/inventory/end/"+itoa(sessionID), nil, token)
	require.Equal(t, 200, status)

	// The extra scan shows up in checkedVehicles but does not create a
	// discrepancy: the expected set only holds parked plates.
	report := body["report"].(map[string]interface{})
	assert.Equal(t, float64(1), report["totalVehicles"])
	assert.Equal(t, float64(2), report["checkedVehicles"])
	assert.Equal(t, float64(0), report["uncheckedVehicles"])
}

func TestInventory_SessionListAndDetail(t *testing.T) {
	app, db, cfg := newTestApp(t)
	token := adminToken(t, cfg)

	older := Models.InventorySession{
		SessionName: "Kiểm kê cũ", StartedBy: "tester",
		StartedAt: time.Now().Add(-2 * time.Hour), Status: Models.SessionActive,
	}
	newer := Models.InventorySession{
		SessionName: "Kiểm kê mới", StartedBy: "tester",
		StartedAt: time.Now(), Status: Models.SessionActive,
	}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	status, body := doJSON(t, app, "GET", "/api/admin/inventory/sessions", nil, token)
	require.Equal(t, 200, status)
	sessions := body["sessions"].([]interface{})
	require.Len(t, sessions, 2)
	assert.Equal(t, "Kiểm kê mới", sessions[0].(map[string]interface{})["sessionName"])

	status, body = doJSON(t, app, "GET", "/api/admin/inventory/session/"+itoa(int(older.ID)), nil, token)
	require.Equal(t, 200, status)
	assert.Equal(t, "Kiểm kê cũ", body["session"].(map[string]interface{})["sessionName"])
}
