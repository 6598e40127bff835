// Package vehicles reads a dealer's inventory for listing, detail views and exports.
package vehicles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

type vehicleRepository interface {
	List(ctx context.Context, dealerID uuid.UUID, status *enums.VehicleStatus, cursor *pagination.Cursor, limit int) ([]models.Vehicle, error)
	FindByID(ctx context.Context, dealerID, id uuid.UUID) (*models.Vehicle, error)
}

// Service exposes read access to the active dealer's inventory.
type Service interface {
	List(ctx context.Context, dealerID uuid.UUID, params ListParams) (pagination.Page[VehicleSummaryDTO], error)
	Get(ctx context.Context, dealerID, vehicleID uuid.UUID, internal bool) (*VehicleDTO, error)
}

type service struct {
	repo vehicleRepository
}

func NewService(repo vehicleRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, dealerID uuid.UUID, params ListParams) (pagination.Page[VehicleSummaryDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[VehicleSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return pagination.Page[VehicleSummaryDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	rows, err := s.repo.List(ctx, dealerID, params.Status, cursor, params.Limit)
	if err != nil {
		return pagination.Page[VehicleSummaryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	dtos := make([]VehicleSummaryDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toSummaryDTO(row))
	}
	return pagination.Build(dtos, params.Limit, func(d VehicleSummaryDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	}), nil
}

// Get loads one vehicle of the dealer. internal adds the cost and note fields.
func (s *service) Get(ctx context.Context, dealerID, vehicleID uuid.UUID, internal bool) (*VehicleDTO, error) {
	v, err := s.repo.FindByID(ctx, dealerID, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return toVehicleDTO(*v, internal), nil
}
