package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStoreMetricsProvider implements StoreMetricsProvider with aggregate queries.
type GormStoreMetricsProvider struct {
	db *gorm.DB
}

// NewGormStoreMetricsProvider creates a new GormStoreMetricsProvider
func NewGormStoreMetricsProvider(db *gorm.DB) *GormStoreMetricsProvider {
	return &GormStoreMetricsProvider{db: db}
}

type storeCount struct {
	StoreID uuid.UUID
	Total   int64
}

// OpenOrdersByStore counts orders not yet delivered or cancelled
func (p *GormStoreMetricsProvider) OpenOrdersByStore(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []storeCount
	err := p.db.WithContext(ctx).
		Table("orders").
		Select("store_id, COUNT(*) AS total").
		Where("status NOT IN ?", []string{"DELIVERED", "CANCELLED"}).
		Group("store_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toStoreMap(rows), nil
}

// OutOfStockByStore counts listed products with no stock left
func (p *GormStoreMetricsProvider) OutOfStockByStore(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []storeCount
	err := p.db.WithContext(ctx).
		Table("products").
		Select("store_id, COUNT(*) AS total").
		Where("status <> ? AND stock_quantity <= 0", "INACTIVE").
		Group("store_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toStoreMap(rows), nil
}

func toStoreMap(rows []storeCount) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.StoreID] = r.Total
	}
	return out
}
