package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// Vehicle is an inventory item.
type Vehicle struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DealerID          uuid.UUID           `gorm:"column:dealer_id;type:uuid;not null"`
	Make              string              `gorm:"column:make;not null"`
	Model             string              `gorm:"column:model;not null"`
	Variant           *string             `gorm:"column:variant"`
	FirstRegistration *time.Time          `gorm:"column:first_registration;type:date"`
	Mileage           *int                `gorm:"column:mileage"`
	FuelType          *enums.FuelType     `gorm:"column:fuel_type"`
	Transmission      *enums.Transmission `gorm:"column:transmission"`
	PowerKW           *int                `gorm:"column:power_kw"`
	Color             *string             `gorm:"column:color"`
	VIN               *string             `gorm:"column:vin"`
	PurchasePrice     *decimal.Decimal    `gorm:"column:purchase_price;type:numeric(12,2)"`
	AskingPrice       *decimal.Decimal    `gorm:"column:asking_price;type:numeric(12,2)"`
	AISuggestedPrice  *decimal.Decimal    `gorm:"column:ai_suggested_price;type:numeric(12,2)"`
	Description       *string             `gorm:"column:description"`
	InternalNotes     *string             `gorm:"column:internal_notes"`
	Status            enums.VehicleStatus `gorm:"column:status;not null;default:'in_stock'"`
	AcquiredAt        *time.Time          `gorm:"column:acquired_at;type:date"`
	SoldAt            *time.Time          `gorm:"column:sold_at;type:date"`
	Images            []VehicleImage      `gorm:"foreignKey:VehicleID"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// VehicleImage is one ordered photo of a vehicle.
type VehicleImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
