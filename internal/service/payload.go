package service

import "fmt"

// SetPayload is one set of a PUT body. Pointers tell an absent key apart
// from a zero value.
type SetPayload struct {
	Index  *int  `json:"index"`
	Reps   *int  `json:"reps" binding:"required"`
	Weight *int  `json:"weight" binding:"required"`
	Easy   *bool `json:"easy" binding:"required"`
	Done   *bool `json:"done"`
}

// ExercisePayload is one exercise of a PUT body.
type ExercisePayload struct {
	Index   *int         `json:"index"`
	Name    *string      `json:"name" binding:"required"`
	Comment *string      `json:"comment" binding:"required"`
	Sets    []SetPayload `json:"sets" binding:"required,dive"`
}

// WorkoutPayload is the PUT body: the entries of one dated workout.
type WorkoutPayload struct {
	Date        string            `json:"date" binding:"required"`
	WorkoutData []ExercisePayload `json:"workoutData" binding:"required,dive"`
}

// validate reports the first missing key as ErrInvalidPayload.
func (p WorkoutPayload) validate() error {
	if p.Date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidPayload)
	}
	if p.WorkoutData == nil {
		return fmt.Errorf("%w: workoutData is required", ErrInvalidPayload)
	}
	for i, exercise := range p.WorkoutData {
		missing := func(key string) error {
			return fmt.Errorf("%w: workoutData[%d].%s is required", ErrInvalidPayload, i, key)
		}
		switch {
		case exercise.Name == nil:
			return missing("name")
		case exercise.Comment == nil:
			return missing("comment")
		case exercise.Sets == nil:
			return missing("sets")
		}
		for j, set := range exercise.Sets {
			key := ""
			switch {
			case set.Reps == nil:
				key = "reps"
			case set.Weight == nil:
				key = "weight"
			case set.Easy == nil:
				key = "easy"
			}
			if key != "" {
				return fmt.Errorf("%w: workoutData[%d].sets[%d].%s is required", ErrInvalidPayload, i, j, key)
			}
		}
	}
	return nil
}
