// internal/repository/mongo/workout_repo.go
package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// SaveEntries sets the mutable fields by array position in a single
// UpdateOne, which Mongo applies atomically to the one workout document.
func (r *mongoWorkoutRepository) SaveEntries(ctx context.Context, workout *domain.Workout, includeDone bool) error {
	if workout.ID == 0 {
		return errors.New("workout ID is required for update")
	}

	set := entryUpdates(workout, includeDone)
	set["updatedAt"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workout.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// entryUpdates builds dotted positional paths such as
// "exercises.0.sets.1.reps". Positions line up with the stored arrays because
// the workout was loaded from them.
func entryUpdates(workout *domain.Workout, includeDone bool) bson.M {
	set := bson.M{}
	for i, exercise := range workout.Exercises {
		prefix := fmt.Sprintf("exercises.%d.", i)
		set[prefix+"name"] = exercise.Name
		set[prefix+"comment"] = exercise.Comment
		for j, s := range exercise.Sets {
			setPrefix := fmt.Sprintf("%ssets.%d.", prefix, j)
			set[setPrefix+"reps"] = s.Reps
			set[setPrefix+"weight"] = s.Weight
			set[setPrefix+"easy"] = s.Easy
			if includeDone {
				set[setPrefix+"done"] = s.Done
			}
		}
	}
	return set
}

func ensureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// loading a user's workouts in storage order
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "workoutDate", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
