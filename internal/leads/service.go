package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
	"github.com/dealeros/dealeros-backend/pkg/metrics"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

type leadRepository interface {
	List(ctx context.Context, dealerID uuid.UUID, status *enums.LeadStatus, cursor *pagination.Cursor, limit int) ([]models.Lead, error)
	FindByID(ctx context.Context, dealerID, id uuid.UUID) (*models.Lead, error)
	ActivitiesFor(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]models.LeadActivity, error)
	Create(ctx context.Context, lead *models.Lead) error
	Save(ctx context.Context, lead *models.Lead) error
	AddActivity(ctx context.Context, activity *models.LeadActivity) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) (bool, error)
	VehicleBelongsTo(ctx context.Context, dealerID, vehicleID uuid.UUID) (bool, error)
}

// txRunner lets the service group a status change with its activity entry.
type txRunner interface {
	InTx(ctx context.Context, fn func(tx *Repository) error) error
}

// Service exposes lead operations for a resolved tenant. Callers pass a single now per request.
type Service interface {
	List(ctx context.Context, dealerID uuid.UUID, params ListParams, now time.Time) (pagination.Page[LeadDTO], error)
	Get(ctx context.Context, dealerID, leadID uuid.UUID, now time.Time) (*LeadDetailDTO, error)
	Create(ctx context.Context, dealerID uuid.UUID, input CreateLeadInput, now time.Time) (*LeadDTO, error)
	Update(ctx context.Context, dealerID, actorID, leadID uuid.UUID, input UpdateLeadInput, now time.Time) (*LeadDetailDTO, error)
	AddActivity(ctx context.Context, dealerID, actorID, leadID uuid.UUID, input AddActivityInput, now time.Time) (*LeadDetailDTO, error)
	Delete(ctx context.Context, dealerID, leadID uuid.UUID) error
}

type service struct {
	repo    leadRepository
	tx      txRunner
	scorer  Scorer
	metrics *metrics.DomainMetrics
}

// NewService builds the lead service. tx may be nil, in which case writes are not grouped.
func NewService(repo leadRepository, tx txRunner, m *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("lead repository required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		scorer:  NewScorer(DefaultWeights),
		metrics: m,
	}, nil
}

func (s *service) List(ctx context.Context, dealerID uuid.UUID, params ListParams, now time.Time) (pagination.Page[LeadDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return pagination.Page[LeadDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	rows, err := s.repo.List(ctx, dealerID, params.Status, cursor, params.Limit)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	activities, err := s.repo.ActivitiesFor(ctx, ids)
	if err != nil {
		return pagination.Page[LeadDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lead activities")
	}

	dtos := make([]LeadDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toLeadDTO(row, s.score(row, activities[row.ID], now)))
	}
	return pagination.Build(dtos, params.Limit, func(d LeadDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	}), nil
}

func (s *service) Get(ctx context.Context, dealerID, leadID uuid.UUID, now time.Time) (*LeadDetailDTO, error) {
	lead, err := s.load(ctx, dealerID, leadID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, *lead, now)
}

func (s *service) Create(ctx context.Context, dealerID uuid.UUID, input CreateLeadInput, now time.Time) (*LeadDTO, error) {
	email := trimmed(input.Email)
	phone := trimmed(input.Phone)
	if email == nil && phone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email or phone is required")
	}
	source := input.Source
	if source == "" {
		source = enums.LeadSourceWebsite
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lead source")
	}
	if input.VehicleID != nil {
		ok, err := s.repo.VehicleBelongsTo(ctx, dealerID, *input.VehicleID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vehicle")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle not found")
		}
	}

	lead := &models.Lead{
		ID:             uuid.New(),
		DealerID:       dealerID,
		VehicleID:      input.VehicleID,
		FirstName:      trimmed(input.FirstName),
		LastName:       trimmed(input.LastName),
		Email:          email,
		Phone:          phone,
		Message:        trimmed(input.Message),
		Source:         source,
		Status:         enums.LeadStatusNew,
		NextFollowupAt: input.NextFollowupAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lead")
	}
	dto := toLeadDTO(*lead, s.score(*lead, nil, now))
	return &dto, nil
}

func (s *service) Update(ctx context.Context, dealerID, actorID, leadID uuid.UUID, input UpdateLeadInput, now time.Time) (*LeadDetailDTO, error) {
	lead, err := s.load(ctx, dealerID, leadID)
	if err != nil {
		return nil, err
	}

	var statusChange *models.LeadActivity
	if input.Status != nil && *input.Status != lead.Status {
		to := *input.Status
		if !to.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if !CanTransition(lead.Status, to) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move lead from %s to %s", lead.Status, to))
		}
		body := fmt.Sprintf("%s -> %s", lead.Status, to)
		statusChange = &models.LeadActivity{
			ID:        uuid.New(),
			LeadID:    lead.ID,
			Type:      enums.ActivityTypeStatusChange,
			Direction: enums.ActivityDirectionInternal,
			Body:      &body,
			CreatedBy: actorRef(actorID),
			CreatedAt: now,
		}
		lead.Status = to
		if to == enums.LeadStatusContacted {
			lead.LastContactAt = &now
		}
	}
	if input.Notes.Set {
		lead.Notes = trimmed(input.Notes.Value)
	}
	if input.NextFollowupAt.Set {
		lead.NextFollowupAt = input.NextFollowupAt.Value
	}
	lead.UpdatedAt = now

	write := func(r leadRepository) error {
		if err := r.Save(ctx, lead); err != nil {
			return err
		}
		if statusChange != nil {
			return r.AddActivity(ctx, statusChange)
		}
		return nil
	}
	if err := s.inTx(ctx, write); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lead")
	}
	return s.detail(ctx, *lead, now)
}

func (s *service) AddActivity(ctx context.Context, dealerID, actorID, leadID uuid.UUID, input AddActivityInput, now time.Time) (*LeadDetailDTO, error) {
	if !input.Type.IsValid() || input.Type == enums.ActivityTypeStatusChange {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity type")
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity direction")
	}
	lead, err := s.load(ctx, dealerID, leadID)
	if err != nil {
		return nil, err
	}

	activity := &models.LeadActivity{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		Type:      input.Type,
		Direction: input.Direction,
		Body:      trimmed(input.Body),
		CreatedBy: actorRef(actorID),
		CreatedAt: now,
	}
	if input.Direction == enums.ActivityDirectionOutbound {
		lead.LastContactAt = &now
		lead.UpdatedAt = now
	}

	write := func(r leadRepository) error {
		if err := r.AddActivity(ctx, activity); err != nil {
			return err
		}
		if input.Direction == enums.ActivityDirectionOutbound {
			return r.Save(ctx, lead)
		}
		return nil
	}
	if err := s.inTx(ctx, write); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add lead activity")
	}
	return s.detail(ctx, *lead, now)
}

func (s *service) Delete(ctx context.Context, dealerID, leadID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, dealerID, leadID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete lead")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, dealerID, leadID uuid.UUID) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, dealerID, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lead")
	}
	return lead, nil
}

func (s *service) detail(ctx context.Context, lead models.Lead, now time.Time) (*LeadDetailDTO, error) {
	activities, err := s.repo.ActivitiesFor(ctx, []uuid.UUID{lead.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lead activities")
	}
	acts := activities[lead.ID]
	out := &LeadDetailDTO{
		LeadDTO:    toLeadDTO(lead, s.score(lead, acts, now)),
		Activities: make([]ActivityDTO, 0, len(acts)),
	}
	for _, a := range acts {
		out.Activities = append(out.Activities, toActivityDTO(a))
	}
	return out, nil
}

func (s *service) score(lead models.Lead, acts []models.LeadActivity, now time.Time) Result {
	res := s.scorer.Score(lead, acts, now)
	s.metrics.ObserveLeadScore(res.Score)
	return res
}

func (s *service) inTx(ctx context.Context, fn func(r leadRepository) error) error {
	if s.tx == nil {
		return fn(s.repo)
	}
	return s.tx.InTx(ctx, func(tx *Repository) error { return fn(tx) })
}

func actorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
