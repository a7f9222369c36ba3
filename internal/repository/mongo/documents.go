package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterCollectionName = "counters"

// Ids are numeric so domain entities look the same on every backend. Each
// entity kind draws from its own sequence in the counters collection.
const (
	userSequence     = "users"
	workoutSequence  = "workouts"
	exerciseSequence = "exercises"
	setSequence      = "sets"
)

type userDocument struct {
	ID         uint      `bson:"_id"`
	Name       string    `bson:"name"`
	ExternalID string    `bson:"externalId"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// workoutDocument embeds the exercise/set subtree, so one UpdateOne on a
// workout is atomic.
type workoutDocument struct {
	ID        uint               `bson:"_id"`
	UserID    uint               `bson:"userId"`
	Date      string             `bson:"workoutDate"`
	Exercises []exerciseDocument `bson:"exercises"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type exerciseDocument struct {
	ID      uint          `bson:"id"`
	Index   int           `bson:"index"`
	Name    string        `bson:"name"`
	Comment string        `bson:"comment"`
	Sets    []setDocument `bson:"sets"`
}

type setDocument struct {
	ID     uint `bson:"id"`
	Index  int  `bson:"index"`
	Reps   int  `bson:"reps"`
	Weight int  `bson:"weight"`
	Easy   bool `bson:"easy"`
	Done   bool `bson:"done"`
}

type counterDocument struct {
	Seq uint `bson:"seq"`
}

// sequences hands out monotonically increasing ids.
type sequences struct {
	collection *mongo.Collection
}

func (s sequences) next(ctx context.Context, name string) (uint, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var counter counterDocument
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func toUser(doc userDocument, workouts []workoutDocument) domain.User {
	user := domain.User{
		ID:         doc.ID,
		Name:       doc.Name,
		ExternalID: doc.ExternalID,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
		Workouts:   make([]domain.Workout, 0, len(workouts)),
	}
	for _, w := range workouts {
		user.Workouts = append(user.Workouts, toWorkout(w))
	}
	return user
}

func toWorkout(doc workoutDocument) domain.Workout {
	workout := domain.Workout{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Date:      doc.Date,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Exercises: make([]domain.Exercise, 0, len(doc.Exercises)),
	}
	for _, e := range doc.Exercises {
		exercise := domain.Exercise{
			ID:        e.ID,
			WorkoutID: doc.ID,
			Index:     e.Index,
			Name:      e.Name,
			Comment:   e.Comment,
			Sets:      make([]domain.Set, 0, len(e.Sets)),
		}
		for _, s := range e.Sets {
			exercise.Sets = append(exercise.Sets, domain.Set{
				ID:         s.ID,
				ExerciseID: e.ID,
				Index:      s.Index,
				Reps:       s.Reps,
				Weight:     s.Weight,
				Easy:       s.Easy,
				Done:       s.Done,
			})
		}
		workout.Exercises = append(workout.Exercises, exercise)
	}
	return workout
}

// fromWorkout assigns ids to the workout subtree and builds its document.
func fromWorkout(ctx context.Context, seq sequences, userID uint, w *domain.Workout, now time.Time) (workoutDocument, error) {
	id, err := seq.next(ctx, workoutSequence)
	if err != nil {
		return workoutDocument{}, err
	}
	w.ID, w.UserID = id, userID
	w.CreatedAt, w.UpdatedAt = now, now

	doc := workoutDocument{
		ID:        id,
		UserID:    userID,
		Date:      w.Date,
		CreatedAt: now,
		UpdatedAt: now,
		Exercises: make([]exerciseDocument, 0, len(w.Exercises)),
	}
	for i := range w.Exercises {
		e := &w.Exercises[i]
		if e.ID, err = seq.next(ctx, exerciseSequence); err != nil {
			return workoutDocument{}, err
		}
		e.WorkoutID = id
		exDoc := exerciseDocument{
			ID:      e.ID,
			Index:   e.Index,
			Name:    e.Name,
			Comment: e.Comment,
			Sets:    make([]setDocument, 0, len(e.Sets)),
		}
		for j := range e.Sets {
			s := &e.Sets[j]
			if s.ID, err = seq.next(ctx, setSequence); err != nil {
				return workoutDocument{}, err
			}
			s.ExerciseID = e.ID
			exDoc.Sets = append(exDoc.Sets, setDocument{
				ID:     s.ID,
				Index:  s.Index,
				Reps:   s.Reps,
				Weight: s.Weight,
				Easy:   s.Easy,
				Done:   s.Done,
			})
		}
		doc.Exercises = append(doc.Exercises, exDoc)
	}
	return doc, nil
}
