package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"noctuai/internal/model"
)

// CreationRepository defines creation persistence operations. The creations
// table is an append-only log: rows are inserted once and never deleted; the
// only mutation is the likes membership update.
type CreationRepository interface {
	Create(ctx context.Context, creation *model.Creation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Creation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Creation, error)
	ListPublished(ctx context.Context) ([]model.Creation, error)
	UpdateLikes(ctx context.Context, id uuid.UUID, likes model.LikeSet) error
}

type creationRepository struct {
	db *gorm.DB
}

// NewCreationRepository creates a new creation repository.
func NewCreationRepository(db *gorm.DB) CreationRepository {
	return &creationRepository{db: db}
}

// Create appends a new creation record.
func (r *creationRepository) Create(ctx context.Context, creation *model.Creation) error {
	return r.db.WithContext(ctx).Create(creation).Error
}

// FindByID finds a creation by ID.
func (r *creationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Creation, error) {
	var creation model.Creation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&creation).Error; err != nil {
		return nil, err
	}
	return &creation, nil
}

// ListByUser returns a user's creations, newest first.
func (r *creationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Creation, error) {
	var creations []model.Creation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}

// ListPublished returns all published creations, newest first.
func (r *creationRepository) ListPublished(ctx context.Context) ([]model.Creation, error) {
	var creations []model.Creation
	if err := r.db.WithContext(ctx).
		Where("publish = ?", true).
		Order("created_at DESC").
		Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}

// UpdateLikes replaces the likes set of a creation.
func (r *creationRepository) UpdateLikes(ctx context.Context, id uuid.UUID, likes model.LikeSet) error {
	return r.db.WithContext(ctx).
		Model(&model.Creation{}).
		Where("id = ?", id).
		Update("likes", likes).Error
}
