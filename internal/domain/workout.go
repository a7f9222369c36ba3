package domain

import (
	"time"
)

// DateLayout is the calendar date format workouts are keyed by.
const DateLayout = "2006-01-02"

// Workout is one logged training day.
type Workout struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"userId"`
	Date   string `gorm:"column:workout_date;type:varchar(10);index" json:"date"` // YYYY-MM-DD

	Exercises []Exercise `gorm:"constraint:OnDelete:CASCADE;" json:"exercises,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
