// Package repo holds the pieces every tenant-scoped repository embeds.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base binds a repository to a GORM handle, which may be a transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle bound to ctx; a nil ctx returns the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Dealer starts a query restricted to one dealer's rows. Only valid for tables
// with an unqualified dealer_id column.
func (b Base) Dealer(ctx context.Context, dealerID uuid.UUID) *gorm.DB {
	return b.DB(ctx).Where("dealer_id = ?", dealerID)
}

// OneRow turns a write that matched nothing into gorm.ErrRecordNotFound.
func OneRow(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
