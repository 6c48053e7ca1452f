package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/distributor"
	"github.com/grocer/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDistributorRepository implements distributor.DistributorRepository using GORM
type GormDistributorRepository struct {
	db *gorm.DB
}

// NewGormDistributorRepository creates a new GormDistributorRepository
func NewGormDistributorRepository(db *gorm.DB) *GormDistributorRepository {
	return &GormDistributorRepository{db: db}
}

// FindByID finds a distributor with its KYC documents
func (r *GormDistributorRepository) FindByID(ctx context.Context, id uuid.UUID) (*distributor.Distributor, error) {
	var d distributor.Distributor
	if err := conn(ctx, r.db).Preload("Documents").First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByEmail finds a distributor by contact email
func (r *GormDistributorRepository) FindByEmail(ctx context.Context, email string) (*distributor.Distributor, error) {
	var d distributor.Distributor
	if err := conn(ctx, r.db).
		Preload("Documents").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindAll lists distributors matching the filter
func (r *GormDistributorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]distributor.Distributor, error) {
	var distributors []distributor.Distributor
	query := r.applyFilter(conn(ctx, r.db).Model(&distributor.Distributor{}), filter)
	query = paginate(query, filter, DistributorSortFields, "created_at DESC")
	if err := query.Find(&distributors).Error; err != nil {
		return nil, err
	}
	return distributors, nil
}

// Count counts distributors matching the filter
func (r *GormDistributorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&distributor.Distributor{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks whether a distributor already registered the email
func (r *GormDistributorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&distributor.Distributor{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save writes the distributor and syncs its document rows
func (r *GormDistributorRepository) Save(ctx context.Context, d *distributor.Distributor) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(d).Error; err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(d.Documents))
		for i := range d.Documents {
			ids[i] = d.Documents[i].ID
		}
		remove := tx.Where("distributor_id = ?", d.ID)
		if len(ids) > 0 {
			remove = remove.Where("id NOT IN ?", ids)
		}
		if err := remove.Delete(&distributor.Document{}).Error; err != nil {
			return err
		}

		for i := range d.Documents {
			d.Documents[i].DistributorID = d.ID
			if err := tx.Save(&d.Documents[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormDistributorRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(business_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(gstin) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "kyc_status":
			query = query.Where("kyc_status = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "city":
			query = query.Where("LOWER(city) = LOWER(?)", value)
		}
	}
	return query
}
