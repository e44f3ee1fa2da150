package Controllers

import (
	"strings"
	"time"

	"BaiXe/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ActionController handles the public scan and check-in/check-out flow
type ActionController struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

// NewActionController creates a new ActionController
func NewActionController(db *gorm.DB, log *logrus.Logger) *ActionController {
	return &ActionController{DB: db, Log: log}
}

// QRPayload is the pipe-delimited content of a citizen-ID QR code.
type QRPayload struct {
	Cccd        string `json:"cccd"`
	OldCmt      string `json:"oldCmt"`
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Hometown    string `json:"hometown"`
	IssueDate   string `json:"issueDate"`
}

// DecodeQR splits the raw QR string. Only the leading CCCD is required,
// the remaining fields are informational.
func DecodeQR(qrString string) QRPayload {
	parts := strings.Split(qrString, "|")
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	return QRPayload{
		Cccd:        get(0),
		OldCmt:      get(1),
		FullName:    get(2),
		DateOfBirth: get(3),
		Gender:      get(4),
		Hometown:    get(5),
		IssueDate:   get(6),
	}
}

// Scan decodes a QR payload and looks the person up by the decoded CCCD
func (c *ActionController) Scan(ctx *fiber.Ctx) error {
	var input struct {
		QRString string `json:"qrString"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.QRString == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Thiếu dữ liệu QR."})
	}

	decoded := DecodeQR(input.QRString)
	person, err := Models.FindPersonByCccd(c.DB, decoded.Cccd)
	if err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chưa đăng ký"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	Models.FillVehicleTypes(person.Vehicles)
	return ctx.JSON(fiber.Map{"user": person})
}

type actionRequest struct {
	Cccd         string `json:"cccd"`
	LicensePlate string `json:"licensePlate"`
	Action       string `json:"action"` // Gửi | Lấy
}

// Action flips a vehicle between parked and retrieved, stamps the
// last-transaction snapshot and appends to the transaction log.
//
// The vehicle update and the log insert are two separate writes. A crash
// between them leaves the log one entry short of the live status; the
// system accepts that and never reconciles.
func (c *ActionController) Action(ctx *fiber.Ctx) error {
	var input actionRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !Models.ValidPlate(input.LicensePlate) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Biển số xe không hợp lệ."})
	}
	if input.Action != Models.ActionDeposit && input.Action != Models.ActionRetrieve {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Hành động không hợp lệ."})
	}

	person, err := Models.FindPersonByCccd(c.DB, input.Cccd)
	if err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy người dùng."})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	plate := Models.NormalizePlate(input.LicensePlate)
	var vehicle *Models.Vehicle
	for i := range person.Vehicles {
		if person.Vehicles[i].LicensePlate == plate {
			vehicle = &person.Vehicles[i]
			break
		}
	}
	if vehicle == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Biển số xe không được đăng ký cho người dùng này."})
	}

	// Depositing an already-parked vehicle (or retrieving a retrieved
	// one) is accepted as a repeat of the same transition.
	newStatus := Models.StatusForAction(input.Action)
	timestamp := time.Now().UTC()

	vehicle.Status = newStatus
	if vehicle.VehicleType == "" {
		vehicle.VehicleType = Models.VehicleTypeForPlate(plate)
	}
	vehicle.LastTransaction = Models.LastTransaction{
		Action:    input.Action,
		Timestamp: &timestamp,
	}
	if err := c.DB.Save(vehicle).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	transaction := Models.Transaction{
		Cccd:         input.Cccd,
		LicensePlate: plate,
		Action:       input.Action,
		Status:       newStatus,
		Timestamp:    timestamp,
	}
	if err := c.DB.Create(&transaction).Error; err != nil {
		// The vehicle row is already updated; the log entry is lost.
		c.Log.WithFields(logrus.Fields{
			"cccd":  input.Cccd,
			"plate": plate,
		}).Errorf("transaction log insert failed: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"success":     true,
		"status":      newStatus,
		"timestamp":   transaction.Timestamp,
		"vehicleType": vehicle.VehicleType,
		"color":       vehicle.Color,
		"brand":       vehicle.Brand,
	})
}
