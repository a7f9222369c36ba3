package relational

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// workoutRepository implements repository.WorkoutRepository on GORM.
type workoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository creates a new Workout repository.
func NewWorkoutRepository(db *gorm.DB) repository.WorkoutRepository {
	return &workoutRepository{db: db}
}

// SaveEntries writes the mutable columns of every exercise and set of the
// workout, then touches the workout itself, all in one transaction.
func (r *workoutRepository) SaveEntries(ctx context.Context, workout *domain.Workout, includeDone bool) error {
	if workout.ID == 0 {
		return errors.New("workout ID is required for update")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, exercise := range workout.Exercises {
			result := tx.Model(&domain.Exercise{}).
				Where("id = ?", exercise.ID).
				Updates(map[string]interface{}{
					"exercise_name": exercise.Name,
					"comment":       exercise.Comment,
				})
			if err := rowsUpdated(result, "exercise", exercise.ID); err != nil {
				return err
			}

			for _, set := range exercise.Sets {
				columns := map[string]interface{}{
					"reps":   set.Reps,
					"weight": set.Weight,
					"easy":   set.Easy,
				}
				if includeDone {
					columns["done"] = set.Done
				}
				result := tx.Model(&domain.Set{}).Where("id = ?", set.ID).Updates(columns)
				if err := rowsUpdated(result, "set", set.ID); err != nil {
					return err
				}
			}
		}

		result := tx.Model(&domain.Workout{}).
			Where("id = ?", workout.ID).
			Update("updated_at", time.Now().UTC())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// rowsUpdated fails when the row to overwrite has disappeared underneath us.
func rowsUpdated(result *gorm.DB, kind string, id uint) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", repository.ErrUpdateFailed, kind, id)
	}
	return nil
}
