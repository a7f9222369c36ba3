package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"fmt"
)

// MergeOptions tune how a PUT payload is applied.
type MergeOptions struct {
	// StrictLength rejects the whole request with ErrInvalidPayload, before
	// anything is committed, unless every matched workout has exactly as many
	// exercises, and each exercise exactly as many sets, as the payload.
	StrictLength bool
	// WriteDone also copies the done flag. Off by default: the merge has
	// historically never written done.
	WriteDone bool
}

// applyEntries overwrites the workout's mutable fields in memory with the
// payload entries at the same positions. Payload entries beyond the stored
// counts are ignored; a payload shorter than storage is a shape mismatch and
// leaves the workout partially modified, so callers must not commit it.
// Entries must have passed WorkoutPayload.validate.
func applyEntries(workout *domain.Workout, exercises []ExercisePayload, writeDone bool) error {
	for i := range workout.Exercises {
		if i >= len(exercises) {
			return fmt.Errorf("%w: exercise %d of workout %s missing from payload",
				ErrShapeMismatch, i, workout.Date)
		}
		in := exercises[i]
		stored := &workout.Exercises[i]
		stored.Name = *in.Name
		stored.Comment = *in.Comment

		for j := range stored.Sets {
			if j >= len(in.Sets) {
				return fmt.Errorf("%w: set %d of exercise %d of workout %s missing from payload",
					ErrShapeMismatch, j, i, workout.Date)
			}
			set := &stored.Sets[j]
			set.Reps = *in.Sets[j].Reps
			set.Weight = *in.Sets[j].Weight
			set.Easy = *in.Sets[j].Easy
			if writeDone && in.Sets[j].Done != nil {
				set.Done = *in.Sets[j].Done
			}
		}
	}
	return nil
}

// checkShape reports whether the payload has exactly the stored shape.
func checkShape(workout *domain.Workout, exercises []ExercisePayload) error {
	if len(exercises) != len(workout.Exercises) {
		return fmt.Errorf("%w: workout %s has %d exercises, payload has %d",
			ErrInvalidPayload, workout.Date, len(workout.Exercises), len(exercises))
	}
	for i, stored := range workout.Exercises {
		if got := len(exercises[i].Sets); got != len(stored.Sets) {
			return fmt.Errorf("%w: exercise %d of workout %s has %d sets, payload has %d",
				ErrInvalidPayload, i, workout.Date, len(stored.Sets), got)
		}
	}
	return nil
}
