// Package repo holds the pieces every gorm repository shares.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base binds a connection to request contexts. Rows with a gorm.DeletedAt
// column are soft-deleted, so Active never returns them; IncludingDeleted is
// for primary-key lookups that must still resolve historical rows.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

func (b Base) Active(ctx context.Context) *gorm.DB {
	return b.DB(ctx)
}

func (b Base) IncludingDeleted(ctx context.Context) *gorm.DB {
	return b.DB(ctx).Unscoped()
}

// WithTx rebinds the repository to tx; a nil tx keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// First loads the first T matching conds. Missing rows surface as
// gorm.ErrRecordNotFound, which services translate.
func First[T any](q *gorm.DB, conds ...any) (*T, error) {
	var out T
	if err := q.First(&out, conds...).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
