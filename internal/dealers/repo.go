package dealers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/pagination"
)

// Repository persists dealer accounts.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, dto CreateDealerDTO) (*models.Dealer, error) {
	dealer := dto.ToModel()
	if err := r.DB(ctx).Create(dealer).Error; err != nil {
		return nil, err
	}
	return dealer, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.DB(ctx).First(&dealer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dealer, nil
}

// List returns up to limit+1 dealers newest first, optionally filtered by a company name
// fragment. Used by the platform admin console.
func (r *Repository) List(ctx context.Context, query string, cursor *pagination.Cursor, limit int) ([]models.Dealer, error) {
	q := r.DB(ctx).Model(&models.Dealer{})
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(company_name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	var rows []models.Dealer
	if err := q.Scopes(pagination.Scope("", cursor, limit)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
