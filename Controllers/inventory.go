package Controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"BaiXe/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryController handles physical-count sessions and the
// end-of-session reconciliation report
type InventoryController struct {
	DB *gorm.DB
}

// NewInventoryController creates a new InventoryController
func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

func adminName(ctx *fiber.Ctx) string {
	if name, ok := ctx.Locals("admin").(string); ok && name != "" {
		return name
	}
	return "admin"
}

// Start opens a new active session
func (c *InventoryController) Start(ctx *fiber.Ctx) error {
	var input struct {
		SessionName string `json:"sessionName"`
		Description string `json:"description"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if input.SessionName == "" {
		input.SessionName = fmt.Sprintf("Kiểm kê %s", time.Now().In(tzVietnam).Format("02/01/2006"))
	}

	session := Models.InventorySession{
		SessionName: input.SessionName,
		Description: input.Description,
		StartedBy:   adminName(ctx),
		StartedAt:   time.Now(),
		Status:      Models.SessionActive,
	}
	if err := c.DB.Create(&session).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"message":   "Bắt đầu phiên kiểm kê thành công",
		"sessionId": session.ID,
	})
}

// Check upserts the record for (session, plate). Rescanning a plate
// overwrites the earlier record rather than accumulating.
func (c *InventoryController) Check(ctx *fiber.Ctx) error {
	var input struct {
		SessionID    uint   `json:"sessionId"`
		LicensePlate string `json:"licensePlate"`
		Status       string `json:"status"`
		Notes        string `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.SessionID == 0 || input.LicensePlate == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Thiếu thông tin session hoặc biển số xe"})
	}

	var session Models.InventorySession
	if err := c.DB.First(&session, input.SessionID).Error; err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Phiên kiểm kê không hợp lệ hoặc đã kết thúc"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}
	if session.Status != Models.SessionActive {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Phiên kiểm kê không hợp lệ hoặc đã kết thúc"})
	}

	if input.Status == "" {
		input.Status = Models.RecordChecked
	}

	record := Models.InventoryRecord{
		SessionID:    input.SessionID,
		LicensePlate: Models.NormalizePlate(input.LicensePlate),
		Status:       input.Status,
		Notes:        input.Notes,
		CheckedBy:    adminName(ctx),
		CheckedAt:    time.Now(),
	}
	err := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "license_plate"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "checked_by", "checked_at"}),
	}).Create(&record).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"message": "Ghi nhận kiểm kê thành công",
		"record":  record,
	})
}

// End completes a session and builds the reconciliation report. The
// parked set is snapshotted here, at end time: a vehicle retrieved
// mid-session simply drops out of the expected set.
func (c *InventoryController) End(ctx *fiber.Ctx) error {
	sessionID, err := strconv.Atoi(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session ID không hợp lệ"})
	}

	var session Models.InventorySession
	if err := c.DB.First(&session, sessionID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy phiên kiểm kê"})
	}
	if session.Status != Models.SessionActive {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Phiên kiểm kê không hợp lệ hoặc đã kết thúc"})
	}

	endedAt := time.Now()
	session.Status = Models.SessionCompleted
	session.EndedAt = &endedAt
	session.EndedBy = adminName(ctx)

	report, err := c.buildReport(&session)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	if serialized, err := json.Marshal(report); err == nil {
		session.Report = serialized
	}
	if err := c.DB.Save(&session).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"message": "Kết thúc phiên kiểm kê thành công",
		"report":  report,
	})
}

// buildReport diffs the currently-parked plates against the plates
// recorded in this session. Plates recorded but no longer parked are
// left out of the discrepancy count.
func (c *InventoryController) buildReport(session *Models.InventorySession) (*Models.InventoryReport, error) {
	parkedPlates, err := Models.ParkedPlates(c.DB)
	if err != nil {
		return nil, err
	}

	var records []Models.InventoryRecord
	if err := c.DB.Where("session_id = ?", session.ID).Find(&records).Error; err != nil {
		return nil, err
	}

	checked := make(map[string]bool, len(records))
	for _, record := range records {
		checked[record.LicensePlate] = true
	}

	unchecked := make([]string, 0)
	for _, plate := range parkedPlates {
		if !checked[plate] {
			unchecked = append(unchecked, plate)
		}
	}

	endedAt := time.Now()
	if session.EndedAt != nil {
		endedAt = *session.EndedAt
	}

	return &Models.InventoryReport{
		SessionID:         session.ID,
		SessionName:       session.SessionName,
		TotalVehicles:     len(parkedPlates),
		CheckedVehicles:   len(records),
		UncheckedVehicles: len(unchecked),
		UncheckedPlates:   unchecked,
		CheckedRecords:    records,
		StartedAt:         session.StartedAt,
		EndedAt:           endedAt,
	}, nil
}

// Sessions lists the 50 most recent sessions, newest first
func (c *InventoryController) Sessions(ctx *fiber.Ctx) error {
	var sessions []Models.InventorySession
	err := c.DB.Order("started_at DESC").Limit(50).Find(&sessions).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}
	return ctx.JSON(fiber.Map{"sessions": sessions})
}

// SessionDetail returns one session with its records
func (c *InventoryController) SessionDetail(ctx *fiber.Ctx) error {
	sessionID, err := strconv.Atoi(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session ID không hợp lệ"})
	}

	var session Models.InventorySession
	if err := c.DB.First(&session, sessionID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy phiên kiểm kê"})
	}

	var records []Models.InventoryRecord
	if err := c.DB.Where("session_id = ?", session.ID).Find(&records).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{"session": session, "records": records})
}

// ExportReport streams a completed session's report as xlsx
func (c *InventoryController) ExportReport(ctx *fiber.Ctx) error {
	sessionID, err := strconv.Atoi(ctx.Params("sessionId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session ID không hợp lệ"})
	}

	var session Models.InventorySession
	if err := c.DB.First(&session, sessionID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy phiên kiểm kê"})
	}
	if session.Status != Models.SessionCompleted || len(session.Report) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Phiên kiểm kê chưa có báo cáo"})
	}

	var report Models.InventoryReport
	if err := json.Unmarshal(session.Report, &report); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	buf, err := reportToExcel(&report)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	filename := fmt.Sprintf("inventory_report_%d.xlsx", session.ID)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return ctx.Send(buf.Bytes())
}

func reportToExcel(report *Models.InventoryReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	summary := [][]interface{}{
		{"Phiên kiểm kê", report.SessionName},
		{"Tổng số xe đang gửi", report.TotalVehicles},
		{"Đã kiểm kê", report.CheckedVehicles},
		{"Chưa kiểm kê", report.UncheckedVehicles},
		{"Bắt đầu", report.StartedAt.Format("2006-01-02 15:04:05")},
		{"Kết thúc", report.EndedAt.Format("2006-01-02 15:04:05")},
	}
	for i, pair := range summary {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+1), pair[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+1), pair[1])
	}

	headerRow := len(summary) + 2
	headers := []string{"Biển số", "Trạng thái", "Ghi chú", "Người kiểm", "Thời gian"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, headerRow)
		f.SetCellValue(sheetName, cell, header)
	}
	for i, record := range report.CheckedRecords {
		row := headerRow + 1 + i
		values := []interface{}{
			record.LicensePlate, record.Status, record.Notes,
			record.CheckedBy, record.CheckedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range values {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+colIndex, row), value)
		}
	}

	uncheckedRow := headerRow + len(report.CheckedRecords) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", uncheckedRow), "Chưa kiểm kê:")
	for i, plate := range report.UncheckedPlates {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", uncheckedRow+1+i), plate)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}
