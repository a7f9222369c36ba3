package service

import "alcyxob/workout-tracker/internal/domain"

// SetView is one set as the client sees it.
type SetView struct {
	Index  int  `json:"index"`
	Reps   int  `json:"reps"`
	Weight int  `json:"weight"`
	Easy   bool `json:"easy"`
	Done   bool `json:"done"`
}

// ExerciseView is one exercise with its sets.
type ExerciseView struct {
	Index   int       `json:"index"`
	Name    string    `json:"name"`
	Comment string    `json:"comment"`
	Sets    []SetView `json:"sets"`
}

// WorkoutView is one dated workout. It is both the read shape and the PUT
// body shape.
type WorkoutView struct {
	Date        string         `json:"date"`
	WorkoutData []ExerciseView `json:"workoutData"`
}

// Project converts a user's stored tree into the client-facing shape. Entries
// come out in storage order; Index is copied through and never sorted on.
// Slices are never nil so empty collections encode as [].
func Project(user *domain.User) []WorkoutView {
	views := make([]WorkoutView, 0, len(user.Workouts))
	for _, workout := range user.Workouts {
		views = append(views, WorkoutView{
			Date:        workout.Date,
			WorkoutData: projectExercises(workout.Exercises),
		})
	}
	return views
}

func projectExercises(exercises []domain.Exercise) []ExerciseView {
	views := make([]ExerciseView, 0, len(exercises))
	for _, exercise := range exercises {
		sets := make([]SetView, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			sets = append(sets, SetView{
				Index:  set.Index,
				Reps:   set.Reps,
				Weight: set.Weight,
				Easy:   set.Easy,
				Done:   set.Done,
			})
		}
		views = append(views, ExerciseView{
			Index:   exercise.Index,
			Name:    exercise.Name,
			Comment: exercise.Comment,
			Sets:    sets,
		})
	}
	return views
}
