package Controllers

import (
	"fmt"
	"regexp"
	"strings"

	"BaiXe/Models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

var cccdRegex = regexp.MustCompile(`^\d{12}$`)

// UserController handles person-record CRUD for the admin panel
type UserController struct {
	DB *gorm.DB
}

// NewUserController creates a new UserController
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type vehiclePayload struct {
	LicensePlate    string                  `json:"licensePlate" validate:"required"`
	VehicleType     string                  `json:"vehicleType"`
	Color           string                  `json:"color"`
	Brand           string                  `json:"brand"`
	Status          string                  `json:"status"`
	LastTransaction *Models.LastTransaction `json:"lastTransaction"`
}

type userPayload struct {
	Cccd        string           `json:"cccd" validate:"required"`
	OldCmt      string           `json:"oldCmt"`
	FullName    string           `json:"fullName" validate:"required"`
	DateOfBirth string           `json:"dateOfBirth" validate:"required"`
	Gender      string           `json:"gender" validate:"required,oneof=Nam Nữ Khác"`
	Hometown    string           `json:"hometown" validate:"required"`
	IssueDate   string           `json:"issueDate" validate:"required"`
	Vehicles    []vehiclePayload `json:"vehicles" validate:"required,min=1,dive"`
}

// checkPlates validates formatting and system-wide uniqueness of every
// plate in the payload. The explicit check runs before the write; the
// unique index on vehicles.license_plate backs it up.
func (c *UserController) checkPlates(vehicles []vehiclePayload, cccd string) (int, string) {
	for _, v := range vehicles {
		if !Models.ValidPlate(v.LicensePlate) {
			return fiber.StatusBadRequest, fmt.Sprintf("Biển số xe không hợp lệ: %s", v.LicensePlate)
		}
		plate := Models.NormalizePlate(v.LicensePlate)
		owner, err := Models.PlateOwner(c.DB, plate, cccd)
		if err != nil {
			return fiber.StatusInternalServerError, "Lỗi server: " + err.Error()
		}
		if owner != "" {
			return fiber.StatusBadRequest, fmt.Sprintf("Biển số xe %s đã được đăng ký cho CCCD %s", plate, owner)
		}
	}
	return 0, ""
}

// AddUser registers a person with at least one vehicle
func (c *UserController) AddUser(ctx *fiber.Ctx) error {
	var input userPayload
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cần ít nhất một biển số xe hợp lệ và đầy đủ thông tin: " + err.Error()})
	}

	if status, msg := c.checkPlates(input.Vehicles, input.Cccd); status != 0 {
		return ctx.Status(status).JSON(fiber.Map{"error": msg})
	}

	person := Models.Person{
		Cccd:        input.Cccd,
		OldCmt:      input.OldCmt,
		FullName:    input.FullName,
		DateOfBirth: input.DateOfBirth,
		Gender:      input.Gender,
		Hometown:    input.Hometown,
		IssueDate:   input.IssueDate,
		Vehicles:    buildVehicles(input.Vehicles, nil),
	}

	if err := c.DB.Create(&person).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "unique") {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Lỗi khi thêm: CCCD hoặc biển số xe đã tồn tại"})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Lỗi khi thêm: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{"success": true, "user": person})
}

// UpdateUser replaces a person's profile and vehicle list. Status,
// last-transaction, color and brand carry over from the existing vehicle
// row when the payload leaves them out.
func (c *UserController) UpdateUser(ctx *fiber.Ctx) error {
	cccd := ctx.Params("cccd")

	var input userPayload
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Cccd == "" {
		input.Cccd = cccd
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cần ít nhất một biển số xe hợp lệ và đầy đủ thông tin: " + err.Error()})
	}

	if status, msg := c.checkPlates(input.Vehicles, cccd); status != 0 {
		return ctx.Status(status).JSON(fiber.Map{"error": msg})
	}

	person, err := Models.FindPersonByCccd(c.DB, cccd)
	if err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy người dùng"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	updated := buildVehicles(input.Vehicles, person.Vehicles)

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", person.ID).Delete(&Models.Vehicle{}).Error; err != nil {
			return err
		}
		person.OldCmt = input.OldCmt
		person.FullName = input.FullName
		person.DateOfBirth = input.DateOfBirth
		person.Gender = input.Gender
		person.Hometown = input.Hometown
		person.IssueDate = input.IssueDate
		person.Vehicles = updated
		return tx.Save(person).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Lỗi khi cập nhật: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{"success": true, "user": person})
}

// ListUsers returns every registered person with vehicles
func (c *UserController) ListUsers(ctx *fiber.Ctx) error {
	var users []Models.Person
	if err := c.DB.Preload("Vehicles").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}
	for i := range users {
		Models.FillVehicleTypes(users[i].Vehicles)
	}
	return ctx.JSON(fiber.Map{"users": users})
}

// DeleteUser removes a person and their vehicles. Blocked while any
// vehicle is still parked.
func (c *UserController) DeleteUser(ctx *fiber.Ctx) error {
	cccd := ctx.Params("cccd")

	person, err := Models.FindPersonByCccd(c.DB, cccd)
	if err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy người dùng"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	for _, vehicle := range person.Vehicles {
		if vehicle.Status == Models.StatusParked {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Không thể xóa người dùng có xe đang gửi"})
		}
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", person.ID).Delete(&Models.Vehicle{}).Error; err != nil {
			return err
		}
		return tx.Delete(person).Error
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server: " + err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Xóa người dùng thành công"})
}

// Search is the public lookup: a 12-digit query searches by CCCD,
// anything else matches the full name case-insensitively.
func (c *UserController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("query")
	if query == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vui lòng cung cấp thông tin tìm kiếm."})
	}

	var person Models.Person
	var err error
	if cccdRegex.MatchString(query) {
		err = c.DB.Preload("Vehicles").Where("cccd = ?", query).First(&person).Error
	} else {
		err = c.DB.Preload("Vehicles").
			Where("LOWER(full_name) LIKE ?", "%"+strings.ToLower(query)+"%").
			First(&person).Error
	}
	if err != nil {
		if Models.IsNotFound(err) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy người dùng phù hợp."})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server khi tìm kiếm: " + err.Error()})
	}

	Models.FillVehicleTypes(person.Vehicles)
	return ctx.JSON(fiber.Map{"user": person})
}

// buildVehicles turns the payload into vehicle rows, filling the derived
// type and merging fields from the matching existing row.
func buildVehicles(payload []vehiclePayload, existing []Models.Vehicle) []Models.Vehicle {
	byPlate := make(map[string]*Models.Vehicle, len(existing))
	for i := range existing {
		byPlate[existing[i].LicensePlate] = &existing[i]
	}

	vehicles := make([]Models.Vehicle, 0, len(payload))
	for _, v := range payload {
		plate := Models.NormalizePlate(v.LicensePlate)
		prev := byPlate[plate]

		vehicle := Models.Vehicle{
			LicensePlate: plate,
			VehicleType:  v.VehicleType,
			Color:        strings.TrimSpace(v.Color),
			Brand:        strings.TrimSpace(v.Brand),
			Status:       v.Status,
		}
		if vehicle.VehicleType == "" {
			vehicle.VehicleType = Models.VehicleTypeForPlate(plate)
		}
		if v.LastTransaction != nil {
			vehicle.LastTransaction = *v.LastTransaction
		}

		if prev != nil {
			if vehicle.Color == "" {
				vehicle.Color = prev.Color
			}
			if vehicle.Brand == "" {
				vehicle.Brand = prev.Brand
			}
			if vehicle.Status == "" {
				vehicle.Status = prev.Status
			}
			if v.LastTransaction == nil {
				vehicle.LastTransaction = prev.LastTransaction
			}
		}
		if vehicle.Status == "" {
			vehicle.Status = Models.StatusRetrieved
		}

		vehicles = append(vehicles, vehicle)
	}
	return vehicles
}
