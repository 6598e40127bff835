package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dealeros/dealeros-backend/internal/repo"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the user. A duplicate email surfaces as a unique violation.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail expects email to be lower-cased and trimmed already.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// RecordLogin stamps last_login_at and, when rehash is non-nil, swaps in a
// password hash produced with the current argon2 parameters.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, rehash *string) error {
	cols := map[string]any{"last_login_at": at}
	if rehash != nil {
		cols["password_hash"] = *rehash
	}
	return repo.OneRow(r.DB(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(cols))
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where(query, arg).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
