package Models

import (
	"regexp"
	"strings"
)

const (
	VehicleTypeMotorbike = "Xe máy"
	VehicleTypeElectric  = "Xe máy điện"

	// Marker that distinguishes electric motorbike plates.
	electricMarker = "MĐ"
)

// Plate format after normalization: two digits + 1-2 letters + optional
// digit + 3-5 digits, or the electric series (two digits + MĐ + one digit
// + 3-5 digits). The two-digit sub-suffix merges into the trailing digit
// run once the dot separator is stripped.
var plateRegex = regexp.MustCompile(`^(\d{2}[A-Z]{1,2}\d?|\d{2}MĐ\d)\d{3,5}$`)

// NormalizePlate strips the separators people type into plates and
// upper-cases the rest. Idempotent.
func NormalizePlate(raw string) string {
	cleaned := strings.NewReplacer("-", "", ".", "").Replace(raw)
	return strings.ToUpper(cleaned)
}

// ValidPlate reports whether the normalized form of raw is a well-formed
// plate. Empty input is rejected.
func ValidPlate(raw string) bool {
	if raw == "" {
		return false
	}
	return plateRegex.MatchString(NormalizePlate(raw))
}

// VehicleTypeForPlate derives the vehicle type from the plate text.
func VehicleTypeForPlate(plate string) string {
	if plate == "" {
		return ""
	}
	if strings.Contains(NormalizePlate(plate), electricMarker) {
		return VehicleTypeElectric
	}
	return VehicleTypeMotorbike
}
