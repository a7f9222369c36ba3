package service

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/relational"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))

type testStore struct {
	users    repository.UserRepository
	workouts repository.WorkoutRepository
}

func newTestStore(t *testing.T) testStore {
	t.Helper()
	log, _ := test.NewNullLogger()
	db, err := relational.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "workouts.db"),
	}, log)
	require.NoError(t, err)
	require.NoError(t, relational.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = relational.Close(db) })

	return testStore{
		users:    relational.NewUserRepository(db),
		workouts: relational.NewWorkoutRepository(db),
	}
}

func newTestWorkoutService(store testStore) *workoutService {
	log, _ := test.NewNullLogger()
	svc := NewWorkoutService(store.users, store.workouts, metrics.New(), log).(*workoutService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func createUser(t *testing.T, store testStore, user *domain.User) {
	t.Helper()
	require.NoError(t, store.users.Create(context.Background(), user))
}

// payloadOf builds a PUT body carrying every key of view.
func payloadOf(view WorkoutView) WorkoutPayload {
	payload := WorkoutPayload{Date: view.Date, WorkoutData: make([]ExercisePayload, 0, len(view.WorkoutData))}
	for _, exercise := range view.WorkoutData {
		exercise := exercise // per-iteration copy (go 1.21 loop semantics)
		sets := make([]SetPayload, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			set := set // per-iteration copy (go 1.21 loop semantics)
			sets = append(sets, SetPayload{
				Index:  &set.Index,
				Reps:   &set.Reps,
				Weight: &set.Weight,
				Easy:   &set.Easy,
				Done:   &set.Done,
			})
		}
		payload.WorkoutData = append(payload.WorkoutData, ExercisePayload{
			Index:   &exercise.Index,
			Name:    &exercise.Name,
			Comment: &exercise.Comment,
			Sets:    sets,
		})
	}
	return payload
}
