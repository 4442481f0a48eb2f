package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"noctuai/internal/model"
)

// UserRepository defines user persistence operations. It stands in for the
// identity provider's metadata store: the entitlement resolver reads plan and
// free_usage here, and metered features request increments through it.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	IncrementFreeUsage(ctx context.Context, id uuid.UUID) error
	UpdatePlan(ctx context.Context, id uuid.UUID, plan model.Plan) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user record.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementFreeUsage bumps the metered-usage counter by one. The update is
// expressed in SQL so concurrent requests from the same user are resolved by
// the database, not by in-process state.
func (r *userRepository) IncrementFreeUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("free_usage", gorm.Expr("free_usage + ?", 1)).Error
}

// UpdatePlan changes a user's subscription tier.
func (r *userRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan model.Plan) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("plan", plan).Error
}
