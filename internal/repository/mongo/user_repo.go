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

const userCollectionName = "users"

// mongoUserRepository implements repository.UserRepository using MongoDB.
// User documents live in "users"; their workouts in "workouts".
type mongoUserRepository struct {
	users    *mongo.Collection
	workouts *mongo.Collection
	seq      sequences
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		users:    db.Collection(userCollectionName),
		workouts: db.Collection(workoutCollectionName),
		seq:      sequences{collection: db.Collection(counterCollectionName)},
	}
}

// GetByExternalID retrieves a user and its workouts by external identity.
func (r *mongoUserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	workouts, err := r.workoutsOf(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	user := toUser(doc, workouts)
	return &user, nil
}

// Create inserts the workouts first and the user document last, so a user
// visible to GetByExternalID always has its workouts. Workouts written before
// a failure are removed again.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ExternalID == "" {
		return errors.New("user external id is required")
	}

	id, err := r.seq.next(ctx, userSequence)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	docs := make([]interface{}, 0, len(user.Workouts))
	for i := range user.Workouts {
		doc, err := fromWorkout(ctx, r.seq, id, &user.Workouts[i], now)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	if len(docs) > 0 {
		// Ordered so _id order, and therefore storage order, matches the slice.
		_, err = r.workouts.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
		if err != nil {
			return r.discardWorkouts(ctx, id, err)
		}
	}

	_, err = r.users.InsertOne(ctx, userDocument{
		ID:         id,
		Name:       user.Name,
		ExternalID: user.ExternalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = repository.ErrConflict
		}
		return r.discardWorkouts(ctx, id, err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// discardWorkouts removes the workouts of a user whose creation failed and
// returns cause.
func (r *mongoUserRepository) discardWorkouts(ctx context.Context, userID uint, cause error) error {
	if _, err := r.workouts.DeleteMany(context.WithoutCancel(ctx), bson.M{"userId": userID}); err != nil {
		return errors.Join(cause, fmt.Errorf("discard workouts of user %d: %w", userID, err))
	}
	return cause
}

// List returns every user with its workouts, oldest first.
func (r *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		workouts, err := r.workoutsOf(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		users = append(users, toUser(doc, workouts))
	}
	return users, nil
}

func (r *mongoUserRepository) workoutsOf(ctx context.Context, userID uint) ([]workoutDocument, error) {
	cursor, err := r.workouts.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []workoutDocument
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func ensureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "externalId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
