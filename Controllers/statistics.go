package Controllers

import (
	"fmt"
	"sort"
	"time"

	"BaiXe/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// All range resolution and bucket keys use one fixed civil timezone.
// The lot is in Vietnam; mixing UTC into any of the variants skews the
// midnight boundary by seven hours.
var tzVietnam = time.FixedZone("UTC+7", 7*60*60)

// StatisticsController handles time-bucketed transaction statistics
type StatisticsController struct {
	DB *gorm.DB
}

// NewStatisticsController creates a new StatisticsController
func NewStatisticsController(db *gorm.DB) *StatisticsController {
	return &StatisticsController{DB: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type bucket struct {
	Key      string        `json:"-"`
	Statuses []statusCount `json:"statuses"`
}

type dailyBucket struct {
	Date string `json:"date"`
	bucket
}

type weeklyBucket struct {
	Week string `json:"week"`
	bucket
}

type monthlyBucket struct {
	Month string `json:"month"`
	bucket
}

func weekKey(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

func dayStart(t time.Time) time.Time {
	t = t.In(tzVietnam)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tzVietnam)
}

func dayEnd(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// resolveRange turns either an explicit [startDate, endDate] pair of
// local calendar days or a period keyword anchored at now into an
// inclusive instant range. Defaults to the current calendar month.
func resolveRange(period, startDate, endDate string, now time.Time) (time.Time, time.Time, error) {
	if startDate != "" && endDate != "" {
		start, err := time.ParseInLocation("2006-01-02", startDate, tzVietnam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("startDate không hợp lệ: %s", startDate)
		}
		end, err := time.ParseInLocation("2006-01-02", endDate, tzVietnam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("endDate không hợp lệ: %s", endDate)
		}
		return dayStart(start), dayEnd(end), nil
	}

	now = now.In(tzVietnam)
	switch period {
	case "day":
		return dayStart(now), dayEnd(now), nil
	case "week":
		// ISO week, Monday through Sunday.
		offset := (int(now.Weekday()) + 6) % 7
		monday := dayStart(now).AddDate(0, 0, -offset)
		return monday, dayEnd(monday.AddDate(0, 0, 6)), nil
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, tzVietnam)
		return start, dayEnd(time.Date(now.Year(), 12, 31, 0, 0, 0, 0, tzVietnam)), nil
	case "", "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, tzVietnam)
		return start, dayEnd(start.AddDate(0, 1, -1)), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("period không hợp lệ: %s", period)
	}
}

// groupByKey counts post-action statuses per bucket key.
func groupByKey(transactions []Models.Transaction, keyFor func(time.Time) string) []bucket {
	counts := make(map[string]map[string]int)
	for _, txn := range transactions {
		key := keyFor(txn.Timestamp)
		if counts[key] == nil {
			counts[key] = make(map[string]int)
		}
		counts[key][txn.Status]++
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]bucket, 0, len(keys))
	for _, key := range keys {
		statuses := make([]statusCount, 0, 2)
		// Fixed status order keeps the payload deterministic.
		for _, status := range []string{Models.StatusParked, Models.StatusRetrieved} {
			if n := counts[key][status]; n > 0 {
				statuses = append(statuses, statusCount{Status: status, Count: n})
			}
		}
		buckets = append(buckets, bucket{Key: key, Statuses: statuses})
	}
	return buckets
}

// Statistics reports daily/weekly/monthly buckets for the resolved range
// plus the live parked count and per-action totals.
func (c *StatisticsController) Statistics(ctx *fiber.Ctx) error {
	period := ctx.Query("period", "month")

	start, end, err := resolveRange(period, ctx.Query("startDate"), ctx.Query("endDate"), time.Now())
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	transactions, err := Models.TransactionsInRange(c.DB, start, end)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	daily := make([]dailyBucket, 0)
	for _, b := range groupByKey(transactions, func(t time.Time) string {
		return t.In(tzVietnam).Format("2006-01-02")
	}) {
		daily = append(daily, dailyBucket{Date: b.Key, bucket: b})
	}

	weekly := make([]weeklyBucket, 0)
	for _, b := range groupByKey(transactions, func(t time.Time) string {
		year, week := t.In(tzVietnam).ISOWeek()
		return weekKey(year, week)
	}) {
		weekly = append(weekly, weeklyBucket{Week: b.Key, bucket: b})
	}

	monthly := make([]monthlyBucket, 0)
	for _, b := range groupByKey(transactions, func(t time.Time) string {
		return t.In(tzVietnam).Format("2006-01")
	}) {
		monthly = append(monthly, monthlyBucket{Month: b.Key, bucket: b})
	}

	// Live count from the registry, independent of the date range.
	totalParked, err := Models.CountParkedVehicles(c.DB)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	var totalIn, totalOut int64
	for _, txn := range transactions {
		if txn.Action == Models.ActionDeposit {
			totalIn++
		} else {
			totalOut++
		}
	}

	return ctx.JSON(fiber.Map{
		"daily":       daily,
		"weekly":      weekly,
		"monthly":     monthly,
		"totalParked": totalParked,
		"totalIn":     totalIn,
		"totalOut":    totalOut,
		"period":      period,
		"dateRange": fiber.Map{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
	})
}

// DashboardStats returns the panel home-screen counters
func (c *StatisticsController) DashboardStats(ctx *fiber.Ctx) error {
	var totalUsers int64
	if err := c.DB.Model(&Models.Person{}).Count(&totalUsers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	var totalVehicles int64
	if err := c.DB.Model(&Models.Vehicle{}).Count(&totalVehicles).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	parked, err := Models.CountParkedVehicles(c.DB)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	// Bounds in UTC to match the stored timestamp offset.
	now := time.Now()
	var todayTransactions int64
	if err := c.DB.Model(&Models.Transaction{}).
		Where("timestamp >= ?", dayStart(now).UTC()).
		Count(&todayTransactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	monthStart := time.Date(now.In(tzVietnam).Year(), now.In(tzVietnam).Month(), 1, 0, 0, 0, 0, tzVietnam)
	var monthlyTransactions int64
	if err := c.DB.Model(&Models.Transaction{}).
		Where("timestamp >= ?", monthStart.UTC()).
		Count(&monthlyTransactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"totalUsers":          totalUsers,
		"totalVehicles":       totalVehicles,
		"parkedVehicles":      parked,
		"todayTransactions":   todayTransactions,
		"monthlyTransactions": monthlyTransactions,
	})
}
