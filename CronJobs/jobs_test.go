package CronJobs

import (
	"fmt"
	"io"
	"testing"
	"time"

	"BaiXe/Models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSweep_CancelsOnlyStaleActiveSessions(t *testing.T) {
	db := testDB(t)

	endedAt := time.Now().Add(-30 * time.Hour)
	sessions := []Models.InventorySession{
		{SessionName: "stale", StartedBy: "a", StartedAt: time.Now().Add(-48 * time.Hour), Status: Models.SessionActive},
		{SessionName: "fresh", StartedBy: "a", StartedAt: time.Now().Add(-1 * time.Hour), Status: Models.SessionActive},
		{SessionName: "done", StartedBy: "a", StartedAt: time.Now().Add(-48 * time.Hour), EndedAt: &endedAt, Status: Models.SessionCompleted},
	}
	for i := range sessions {
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	janitor := NewSessionJanitor(db, quietLogger(), 24*time.Hour)
	require.NoError(t, janitor.Sweep())

	byName := func(name string) Models.InventorySession {
		var s Models.InventorySession
		require.NoError(t, db.Where("session_name = ?", name).First(&s).Error)
		return s
	}

	stale := byName("stale")
	assert.Equal(t, Models.SessionCancelled, stale.Status)
	assert.Equal(t, "system", stale.EndedBy)
	assert.NotNil(t, stale.EndedAt)

	assert.Equal(t, Models.SessionActive, byName("fresh").Status)
	assert.Equal(t, Models.SessionCompleted, byName("done").Status)
}

func TestSweep_NoSessionsIsNoop(t *testing.T) {
	db := testDB(t)
	janitor := NewSessionJanitor(db, quietLogger(), 24*time.Hour)
	assert.NoError(t, janitor.Sweep())
}
