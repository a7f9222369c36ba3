package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"
)

// NewSeedUser builds the user created on first read: one workout dated today
// (UTC) holding one blank exercise with one blank set.
func NewSeedUser(externalID string, now time.Time) *domain.User {
	return &domain.User{
		ExternalID: externalID,
		Workouts: []domain.Workout{{
			Date: now.UTC().Format(domain.DateLayout),
			Exercises: []domain.Exercise{{
				Index: 0,
				Sets:  []domain.Set{{Index: 0}},
			}},
		}},
	}
}

// FixtureUser builds the demo tree the seed command writes for the nth
// (1-based) uid.
func FixtureUser(externalID string, n int) *domain.User {
	return &domain.User{
		ExternalID: externalID,
		Name:       fmt.Sprintf("user%d", n),
		Workouts: []domain.Workout{{
			Date: "2022-10-03",
			Exercises: []domain.Exercise{{
				Index:   0,
				Name:    "biceps",
				Comment: fmt.Sprintf("I am totally user %d", n),
				Sets: []domain.Set{
					{Index: 0, Reps: 10, Weight: 15, Easy: true, Done: false},
					{Index: 1, Reps: 11, Weight: 16, Easy: true, Done: false},
				},
			}},
		}},
	}
}

// SeedFixtures writes a FixtureUser for each uid that has no user yet and
// reports how many were created.
func SeedFixtures(ctx context.Context, userRepo repository.UserRepository, uids []string) (int, error) {
	created := 0
	for i, uid := range uids {
		_, err := userRepo.GetByExternalID(ctx, uid)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		if err := userRepo.Create(ctx, FixtureUser(uid, i+1)); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", uid, err)
		}
		created++
	}
	return created, nil
}
