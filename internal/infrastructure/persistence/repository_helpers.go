package persistence

import (
	"context"
	"errors"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to a domain not-found error for entity
func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}

// updateWithVersion writes values to the row if its stored version is one
// behind the domain version. The domain has already incremented it.
func updateWithVersion(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int, values map[string]any) error {
	values["version"] = version
	result := db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", id, version-1).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
