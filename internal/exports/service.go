package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/metrics"
)

// ContentType is the MIME type of every export file.
const ContentType = "text/csv; charset=utf-8"

type vehicleSource interface {
	ListForExport(ctx context.Context, dealerID uuid.UUID, ids []uuid.UUID, statuses []enums.VehicleStatus) ([]models.Vehicle, error)
}

// File is a rendered export ready to be served as a download.
type File struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// Service loads a dealer's inventory and renders it for a marketplace.
type Service interface {
	Export(ctx context.Context, dealerID uuid.UUID, format Format, vehicleIDs []uuid.UUID, now time.Time) (*File, error)
}

type service struct {
	vehicles     vehicleSource
	imageColumns int
	metrics      *metrics.DomainMetrics
}

func NewService(vehicles vehicleSource, cfg config.ExportConfig, m *metrics.DomainMetrics) (Service, error) {
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &service{
		vehicles:     vehicles,
		imageColumns: cfg.ImageColumns,
		metrics:      m,
	}, nil
}

func (s *service) formatter(format Format, now time.Time) (Formatter, bool) {
	switch format {
	case FormatAutoScout24:
		return AutoScout24{ImageColumns: s.imageColumns}, true
	case FormatTutti:
		return Tutti{}, true
	case FormatFull:
		return Full{Now: now}, true
	}
	return nil, false
}

func (s *service) Export(ctx context.Context, dealerID uuid.UUID, format Format, vehicleIDs []uuid.UUID, now time.Time) (*File, error) {
	formatter, ok := s.formatter(format, now)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported export format")
	}

	rows, err := s.vehicles.ListForExport(ctx, dealerID, vehicleIDs, formatter.Statuses())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicles for export")
	}

	doc := Render(formatter, rows)
	if doc.Rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no vehicles to export")
	}
	s.metrics.AddExportRows(string(format), doc.Rows)

	return &File{
		Filename:    Filename(format, now),
		ContentType: ContentType,
		Body:        doc.Body,
		Rows:        doc.Rows,
	}, nil
}

// Filename is <format>_export_<YYYY-MM-DD>.csv using the UTC date of now.
func Filename(format Format, now time.Time) string {
	return fmt.Sprintf("%s_export_%s.csv", format, now.UTC().Format(time.DateOnly))
}
