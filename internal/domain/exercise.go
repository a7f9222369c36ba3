// internal/domain/exercise.go
package domain

// Exercise is the nth exercise of a workout, e.g. bicep curls.
type Exercise struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	WorkoutID uint   `gorm:"index;not null" json:"workoutId"`
	Index     int    `gorm:"column:position" json:"index"` // carried as data, never used for ordering
	Name      string `gorm:"column:exercise_name;type:varchar(255)" json:"name"`
	Comment   string `gorm:"type:text" json:"comment"`

	Sets []Set `gorm:"constraint:OnDelete:CASCADE;" json:"sets,omitempty"`
}

// Set is the nth set of an exercise.
type Set struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ExerciseID uint `gorm:"index;not null" json:"exerciseId"`
	Index      int  `gorm:"column:position" json:"index"`
	Reps       int  `json:"reps"`
	Weight     int  `json:"weight"`
	Easy       bool `gorm:"not null;default:false" json:"easy"`
	Done       bool `gorm:"not null;default:false" json:"done"`
}

// TableName pins the table name; SET is a keyword in most SQL dialects.
func (Set) TableName() string {
	return "sets"
}
