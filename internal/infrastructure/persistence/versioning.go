package persistence

import (
	"github.com/grocer/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type versioned interface {
	GetVersion() int
	StoredVersion() int
	MarkStored()
}

func markStored[T any, P interface {
	*T
	versioned
}](items []T) {
	for i := range items {
		P(&items[i]).MarkStored()
	}
}

// saveVersioned inserts an aggregate that was never persisted and otherwise
// updates it only if the row still carries the version it was loaded with.
// A stale write returns shared.ErrConcurrencyConflict.
func saveVersioned(db *gorm.DB, agg versioned, omit ...string) error {
	if agg.StoredVersion() == 0 {
		if err := db.Omit(clause.Associations).Create(agg).Error; err != nil {
			return err
		}
		agg.MarkStored()
		return nil
	}

	result := db.Model(agg).
		Select("*").
		Omit(append([]string{"id", "created_at", clause.Associations}, omit...)...).
		Where("version = ?", agg.StoredVersion()).
		Updates(agg)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	agg.MarkStored()
	return nil
}
