package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/support"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConversationRepository implements support.ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// FindByID finds a conversation with its messages in send order
func (r *GormConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*support.Conversation, error) {
	var c support.Conversation
	if err := conn(ctx, r.db).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at ASC") }).
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll lists conversations without their messages
func (r *GormConversationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]support.Conversation, error) {
	var conversations []support.Conversation
	query := r.applyFilter(conn(ctx, r.db).Model(&support.Conversation{}), filter)
	query = paginate(query, filter, ConversationSortFields, "last_message_at DESC")
	if err := query.Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

// Count counts conversations matching the filter
func (r *GormConversationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&support.Conversation{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the conversation and inserts messages not yet stored.
// Messages are append-only.
func (r *GormConversationRepository) Save(ctx context.Context, c *support.Conversation) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}
		if len(c.Messages) == 0 {
			return nil
		}
		for i := range c.Messages {
			c.Messages[i].ConversationID = c.ID
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c.Messages).Error
	})
}

func (r *GormConversationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(subject) LIKE ?", likePattern(filter.Search))
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "store_id":
			query = query.Where("store_id = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "assigned_to":
			query = query.Where("assigned_to = ?", value)
		case "unassigned":
			if value == true {
				query = query.Where("assigned_to IS NULL")
			}
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		}
	}
	return query
}
