package relational

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

// userRepository implements repository.UserRepository on GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// GetByExternalID loads a user and its whole workout tree.
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var user domain.User
	err := withTree(r.db.WithContext(ctx)).
		Where("external_id = ?", externalID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts the user; GORM cascades the insert into nested workouts,
// exercises and sets inside one transaction.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ExternalID == "" {
		return errors.New("user external id is required")
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// List returns every user with its tree, oldest first.
func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := withTree(r.db.WithContext(ctx)).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// withTree preloads the containment tree. Every level is ordered by primary
// key, which is the order rows were inserted in.
func withTree(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Workouts", byID).
		Preload("Workouts.Exercises", byID).
		Preload("Workouts.Exercises.Sets", byID)
}

func byID(tx *gorm.DB) *gorm.DB {
	return tx.Order("id")
}
