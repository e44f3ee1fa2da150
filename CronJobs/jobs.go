package CronJobs

import (
	"fmt"
	"time"

	"BaiXe/Models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionJanitor cancels inventory sessions that were started and never
// ended. Cancelled is terminal, same as completed, so an abandoned
// session can't swallow later check events.
type SessionJanitor struct {
	cronScheduler *cron.Cron
	db            *gorm.DB
	log           *logrus.Logger
	ttl           time.Duration
	jobID         cron.EntryID
}

// NewSessionJanitor creates a janitor that cancels sessions older than ttl
func NewSessionJanitor(db *gorm.DB, log *logrus.Logger, ttl time.Duration) *SessionJanitor {
	return &SessionJanitor{
		cronScheduler: cron.New(),
		db:            db,
		log:           log,
		ttl:           ttl,
	}
}

// Start schedules the hourly sweep
func (j *SessionJanitor) Start() error {
	var err error
	j.jobID, err = j.cronScheduler.AddFunc("@every 1h", func() {
		if err := j.Sweep(); err != nil {
			j.log.Errorf("stale session sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	j.cronScheduler.Start()
	return nil
}

// Stop terminates the scheduler
func (j *SessionJanitor) Stop() {
	j.cronScheduler.Stop()
}

// Sweep cancels every active session older than the TTL.
func (j *SessionJanitor) Sweep() error {
	cutoff := time.Now().Add(-j.ttl)
	now := time.Now()

	result := j.db.Model(&Models.InventorySession{}).
		Where("status = ? AND started_at < ?", Models.SessionActive, cutoff).
		Updates(map[string]interface{}{
			"status":   Models.SessionCancelled,
			"ended_at": now,
			"ended_by": "system",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		j.log.Infof("cancelled %d stale inventory sessions", result.RowsAffected)
	}
	return nil
}
