package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"gorm.io/gorm"
)

// GormStoreRepository implements store.StoreRepository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindByID finds a store by ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var s store.Store
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByCode finds a store by its code
func (r *GormStoreRepository) FindByCode(ctx context.Context, code string) (*store.Store, error) {
	var s store.Store
	if err := conn(ctx, r.db).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByIDs loads several stores at once; missing IDs are skipped
func (r *GormStoreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]store.Store, error) {
	if len(ids) == 0 {
		return []store.Store{}, nil
	}
	var stores []store.Store
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// FindAll lists stores matching the filter
func (r *GormStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]store.Store, error) {
	var stores []store.Store
	query := r.applyFilter(conn(ctx, r.db).Model(&store.Store{}), filter)
	query = paginate(query, filter, StoreSortFields, "name ASC")
	if err := query.Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Count counts stores matching the filter
func (r *GormStoreRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&store.Store{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a store code is taken
func (r *GormStoreRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&store.Store{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a store
func (r *GormStoreRepository) Save(ctx context.Context, s *store.Store) error {
	return conn(ctx, r.db).Save(s).Error
}

// Delete deletes a store
func (r *GormStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Delete(&store.Store{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormStoreRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(city) LIKE ?", pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "city":
			query = query.Where("LOWER(city) = LOWER(?)", value)
		case "pincode":
			query = query.Where("pincode = ?", value)
		}
	}
	return query
}

// GormServiceAreaRepository implements store.ServiceAreaRepository using GORM.
// Pincodes live in a child table and are replaced wholesale on save.
type GormServiceAreaRepository struct {
	db *gorm.DB
}

// NewGormServiceAreaRepository creates a new GormServiceAreaRepository
func NewGormServiceAreaRepository(db *gorm.DB) *GormServiceAreaRepository {
	return &GormServiceAreaRepository{db: db}
}

// FindByID finds a service area with its pincodes
func (r *GormServiceAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.ServiceArea, error) {
	var area store.ServiceArea
	if err := conn(ctx, r.db).
		Preload("Pincodes").
		First(&area, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &area, nil
}

// FindAll lists service areas matching the filter
func (r *GormServiceAreaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]store.ServiceArea, error) {
	var areas []store.ServiceArea
	query := r.applyFilter(conn(ctx, r.db).Model(&store.ServiceArea{}), filter)
	query = paginate(query, filter, ServiceAreaSortFields, "priority ASC, name ASC")
	if err := query.Preload("Pincodes").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// Count counts service areas matching the filter
func (r *GormServiceAreaRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&store.ServiceArea{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActiveByPincode returns active areas listing the pincode
func (r *GormServiceAreaRepository) FindActiveByPincode(ctx context.Context, pincode string) ([]store.ServiceArea, error) {
	var areas []store.ServiceArea
	if err := conn(ctx, r.db).
		Model(&store.ServiceArea{}).
		Joins("JOIN service_area_pincodes sap ON sap.service_area_id = service_areas.id").
		Where("sap.pincode = ? AND service_areas.is_active = ?", strings.TrimSpace(pincode), true).
		Order("service_areas.priority ASC").
		Preload("Pincodes").
		Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// FindActiveByCity returns active areas in the city, case-insensitively
func (r *GormServiceAreaRepository) FindActiveByCity(ctx context.Context, city string) ([]store.ServiceArea, error) {
	var areas []store.ServiceArea
	if err := conn(ctx, r.db).
		Where("LOWER(city) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(city)), true).
		Order("priority ASC").
		Preload("Pincodes").
		Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// CountByStore counts the areas owned by a store
func (r *GormServiceAreaRepository) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&store.ServiceArea{}).
		Where("store_id = ?", storeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the area and replaces its pincode set in one transaction
func (r *GormServiceAreaRepository) Save(ctx context.Context, area *store.ServiceArea) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Pincodes").Save(area).Error; err != nil {
			return err
		}
		if err := tx.Where("service_area_id = ?", area.ID).Delete(&store.ServiceAreaPincode{}).Error; err != nil {
			return err
		}
		if len(area.Pincodes) == 0 {
			return nil
		}
		for i := range area.Pincodes {
			area.Pincodes[i].ServiceAreaID = area.ID
		}
		return tx.Create(&area.Pincodes).Error
	})
}

// Delete deletes a service area and its pincodes
func (r *GormServiceAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_area_id = ?", id).Delete(&store.ServiceAreaPincode{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&store.ServiceArea{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormServiceAreaRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "city":
			query = query.Where("LOWER(city) = LOWER(?)", value)
		case "pincode":
			query = query.Where("id IN (?)",
				r.db.Model(&store.ServiceAreaPincode{}).Select("service_area_id").Where("pincode = ?", value))
		}
	}
	return query
}
