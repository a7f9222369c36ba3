package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidPayload = errors.New("invalid workout payload")
	ErrShapeMismatch  = errors.New("workout payload does not match stored workout")
)

// WorkoutService reads and updates the workout log of the user behind a
// verified token.
type WorkoutService interface {
	// GetWorkouts returns the user's projection, creating the user with a
	// placeholder workout first if it does not exist yet.
	GetWorkouts(ctx context.Context, externalID string) ([]WorkoutView, error)
	// UpdateWorkout merges payload into every stored workout with the same
	// date and returns the fresh projection. It never creates the user.
	UpdateWorkout(ctx context.Context, externalID string, payload WorkoutPayload, opts MergeOptions) ([]WorkoutView, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	locks       *userLocks
	now         func() time.Time
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(userRepo repository.UserRepository, workoutRepo repository.WorkoutRepository, m *metrics.Metrics, log logrus.FieldLogger) WorkoutService {
	return &workoutService{
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
		metrics:     m,
		log:         log,
		locks:       newUserLocks(),
		now:         time.Now,
	}
}

func (s *workoutService) GetWorkouts(ctx context.Context, externalID string) ([]WorkoutView, error) {
	if externalID == "" {
		return nil, errors.New("external id cannot be empty")
	}

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.provision(ctx, externalID)
	}
	if err != nil {
		return nil, err
	}
	return Project(user), nil
}

// provision creates a user seeded with one empty workout so the first read
// is never an empty tree.
func (s *workoutService) provision(ctx context.Context, externalID string) (*domain.User, error) {
	user := NewSeedUser(externalID, s.now())
	err := s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		// lost a race with a concurrent first read
		return s.userRepo.GetByExternalID(ctx, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}

	s.metrics.RecordProvision()
	s.log.WithField("externalId", externalID).Info("provisioned new user")
	return user, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, externalID string, payload WorkoutPayload, opts MergeOptions) ([]WorkoutView, error) {
	if externalID == "" {
		return nil, errors.New("external id cannot be empty")
	}
	if err := payload.validate(); err != nil {
		s.metrics.RecordMerge(metrics.MergeInvalid)
		return nil, err
	}

	unlock := s.locks.lock(externalID)
	defer unlock()

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if opts.StrictLength {
		if _, err := time.Parse(domain.DateLayout, payload.Date); err != nil {
			s.metrics.RecordMerge(metrics.MergeInvalid)
			return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPayload, payload.Date)
		}
	}

	matched := user.WorkoutsOn(payload.Date)
	if len(matched) == 0 {
		s.metrics.RecordMerge(metrics.MergeNoMatch)
		s.log.WithFields(logrus.Fields{"externalId": externalID, "date": payload.Date}).
			Debug("no workout matches payload date")
		return Project(user), nil
	}

	if opts.StrictLength {
		for _, workout := range matched {
			if err := checkShape(workout, payload.WorkoutData); err != nil {
				s.metrics.RecordMerge(metrics.MergeInvalid)
				return nil, err
			}
		}
	}

	// Commit per workout: a failure part way leaves earlier workouts updated.
	for _, workout := range matched {
		if err := applyEntries(workout, payload.WorkoutData, opts.WriteDone); err != nil {
			s.metrics.RecordMerge(metrics.MergeMismatch)
			s.log.WithFields(logrus.Fields{"externalId": externalID, "workoutId": workout.ID}).
				WithError(err).Warn("payload shape does not match stored workout")
			return nil, err
		}
		if err := s.workoutRepo.SaveEntries(ctx, workout, opts.WriteDone); err != nil {
			s.metrics.RecordMerge(metrics.MergeFailed)
			return nil, fmt.Errorf("save workout %d: %w", workout.ID, err)
		}
		s.metrics.RecordCommit()
	}

	fresh, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		s.metrics.RecordMerge(metrics.MergeFailed)
		return nil, fmt.Errorf("reload user: %w", err)
	}
	s.metrics.RecordMerge(metrics.MergeUpdated)
	s.log.WithFields(logrus.Fields{
		"externalId": externalID,
		"date":       payload.Date,
		"workouts":   len(matched),
	}).Info("merged workout payload")
	return Project(fresh), nil
}
