package vehicles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

// VehicleSummaryDTO is one row of the inventory list.
type VehicleSummaryDTO struct {
	ID                uuid.UUID           `json:"id"`
	Make              string              `json:"make"`
	Model             string              `json:"model"`
	Variant           *string             `json:"variant,omitempty"`
	FirstRegistration *time.Time          `json:"first_registration,omitempty"`
	Mileage           *int                `json:"mileage,omitempty"`
	AskingPrice       *decimal.Decimal    `json:"asking_price,omitempty"`
	Status            enums.VehicleStatus `json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
}

// VehicleDTO is the full vehicle. Purchase price, AI price suggestion and internal notes
// are only filled for members allowed to manage inventory.
type VehicleDTO struct {
	VehicleSummaryDTO
	FuelType         *enums.FuelType     `json:"fuel_type,omitempty"`
	Transmission     *enums.Transmission `json:"transmission,omitempty"`
	PowerKW          *int                `json:"power_kw,omitempty"`
	Color            *string             `json:"color,omitempty"`
	VIN              *string             `json:"vin,omitempty"`
	Description      *string             `json:"description,omitempty"`
	PurchasePrice    *decimal.Decimal    `json:"purchase_price,omitempty"`
	AISuggestedPrice *decimal.Decimal    `json:"ai_suggested_price,omitempty"`
	InternalNotes    *string             `json:"internal_notes,omitempty"`
	AcquiredAt       *time.Time          `json:"acquired_at,omitempty"`
	SoldAt           *time.Time          `json:"sold_at,omitempty"`
	Images           []ImageDTO          `json:"images"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type ImageDTO struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
	IsMain   bool   `json:"is_main"`
}

// ListParams filters the inventory list.
type ListParams struct {
	pagination.Params
	Status *enums.VehicleStatus
}

func toSummaryDTO(v models.Vehicle) VehicleSummaryDTO {
	return VehicleSummaryDTO{
		ID:                v.ID,
		Make:              v.Make,
		Model:             v.Model,
		Variant:           v.Variant,
		FirstRegistration: v.FirstRegistration,
		Mileage:           v.Mileage,
		AskingPrice:       v.AskingPrice,
		Status:            v.Status,
		CreatedAt:         v.CreatedAt,
	}
}

func toVehicleDTO(v models.Vehicle, internal bool) *VehicleDTO {
	dto := &VehicleDTO{
		VehicleSummaryDTO: toSummaryDTO(v),
		FuelType:          v.FuelType,
		Transmission:      v.Transmission,
		PowerKW:           v.PowerKW,
		Color:             v.Color,
		VIN:               v.VIN,
		Description:       v.Description,
		AcquiredAt:        v.AcquiredAt,
		SoldAt:            v.SoldAt,
		Images:            make([]ImageDTO, 0, len(v.Images)),
		UpdatedAt:         v.UpdatedAt,
	}
	if internal {
		dto.PurchasePrice = v.PurchasePrice
		dto.AISuggestedPrice = v.AISuggestedPrice
		dto.InternalNotes = v.InternalNotes
	}
	for _, img := range v.Images {
		dto.Images = append(dto.Images, ImageDTO{URL: img.URL, Position: img.Position, IsMain: img.IsMain})
	}
	return dto
}
