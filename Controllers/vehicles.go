package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"BaiXe/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// VehicleController handles vehicle listing, search and export
type VehicleController struct {
	DB *gorm.DB
}

// NewVehicleController creates a new VehicleController
func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{DB: db}
}

// vehicleRow is the flattened vehicle+owner shape the panel tables use.
type vehicleRow struct {
	Cccd         string     `json:"cccd"`
	LicensePlate string     `json:"licensePlate"`
	VehicleType  string     `json:"vehicleType"`
	Color        string     `json:"color"`
	Brand        string     `json:"brand"`
	Status       string     `json:"status"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	FullName     string     `json:"fullName"`
	Hometown     string     `json:"hometown"`
	DateOfBirth  string     `json:"dateOfBirth"`
	IssueDate    string     `json:"issueDate"`
}

func flattenVehicles(people []Models.Person) []vehicleRow {
	rows := make([]vehicleRow, 0)
	for _, person := range people {
		for _, vehicle := range person.Vehicles {
			vehicleType := vehicle.VehicleType
			if vehicleType == "" {
				vehicleType = Models.VehicleTypeForPlate(vehicle.LicensePlate)
			}
			rows = append(rows, vehicleRow{
				Cccd:         person.Cccd,
				LicensePlate: vehicle.LicensePlate,
				VehicleType:  vehicleType,
				Color:        vehicle.Color,
				Brand:        vehicle.Brand,
				Status:       vehicle.Status,
				Timestamp:    vehicle.LastTransaction.Timestamp,
				FullName:     person.FullName,
				Hometown:     person.Hometown,
				DateOfBirth:  person.DateOfBirth,
				IssueDate:    person.IssueDate,
			})
		}
	}
	return rows
}

func (c *VehicleController) listRows(status, cccd string) ([]vehicleRow, error) {
	query := c.DB.Preload("Vehicles")
	if cccd != "" {
		query = query.Where("cccd = ?", cccd)
	}

	var people []Models.Person
	if err := query.Find(&people).Error; err != nil {
		return nil, err
	}

	rows := flattenVehicles(people)
	if status == "" {
		return rows, nil
	}
	filtered := rows[:0]
	for _, row := range rows {
		if row.Status == status {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ListVehicles returns the vehicle table, optionally filtered by status
// and owner CCCD
func (c *VehicleController) ListVehicles(ctx *fiber.Ctx) error {
	rows, err := c.listRows(ctx.Query("status"), ctx.Query("cccd"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}
	return ctx.JSON(fiber.Map{"vehicles": rows, "total": len(rows)})
}

// SearchByCccd returns one owner's vehicles in the flattened table shape
func (c *VehicleController) SearchByCccd(ctx *fiber.Ctx) error {
	cccd := ctx.Query("cccd")
	if cccd == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vui lòng cung cấp số CCCD."})
	}

	person, err := Models.FindPersonByCccd(c.DB, cccd)
	if err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy người dùng với CCCD này."})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	rows := flattenVehicles([]Models.Person{*person})
	return ctx.JSON(fiber.Map{"vehicles": rows, "total": len(rows)})
}

type plateSearchResult struct {
	ID           uint   `json:"id"`
	LicensePlate string `json:"licensePlate"`
	VehicleType  string `json:"vehicleType"`
	Color        string `json:"color"`
	Brand        string `json:"brand"`
	Status       string `json:"status"`
	OwnerName    string `json:"ownerName"`
	OwnerCccd    string `json:"ownerCccd"`
}

func (c *VehicleController) searchBySuffix(lastDigits string) ([]plateSearchResult, error) {
	var rows []plateSearchResult
	err := c.DB.Table("vehicles").
		Select(`vehicles.id, vehicles.license_plate, vehicles.vehicle_type,
			vehicles.color, vehicles.brand, vehicles.status,
			people.full_name AS owner_name, people.cccd AS owner_cccd`).
		Joins("JOIN people ON people.id = vehicles.person_id").
		Where("vehicles.license_plate LIKE ?", "%"+lastDigits).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].VehicleType == "" {
			rows[i].VehicleType = Models.VehicleTypeForPlate(rows[i].LicensePlate)
		}
	}
	return rows, nil
}

// SearchPlateSuffix finds vehicles by the 4-5 trailing digits of the
// plate, the way staff read them off a parked bike.
func (c *VehicleController) SearchPlateSuffix(ctx *fiber.Ctx) error {
	lastDigits := ctx.Params("lastDigits")
	if lastDigits == "" {
		lastDigits = ctx.Query("suffix")
	}
	if len(lastDigits) < 4 || len(lastDigits) > 5 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vui lòng nhập 4-5 số cuối của biển số xe"})
	}

	results, err := c.searchBySuffix(lastDigits)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}
	return ctx.JSON(fiber.Map{"results": results})
}

// ExportVehicles streams the (optionally filtered) vehicle table as xlsx
func (c *VehicleController) ExportVehicles(ctx *fiber.Ctx) error {
	rows, err := c.listRows(ctx.Query("status"), ctx.Query("cccd"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	buf, err := vehiclesToExcel(rows)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	filename := fmt.Sprintf("vehicles_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return ctx.Send(buf.Bytes())
}

func vehiclesToExcel(rows []vehicleRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	sheetName := "Vehicles"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"CCCD", "Biển số", "Loại xe", "Màu", "Hãng", "Trạng thái",
		"Giao dịch cuối", "Họ tên", "Quê quán",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, row := range rows {
		lastSeen := ""
		if row.Timestamp != nil {
			lastSeen = row.Timestamp.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			row.Cccd, row.LicensePlate, row.VehicleType, row.Color,
			row.Brand, row.Status, lastSeen, row.FullName, row.Hometown,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string('A' + rune(i))
		f.SetColWidth(sheetName, col, col, 18)
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
