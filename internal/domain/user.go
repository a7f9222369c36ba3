package domain

import (
	"time"
)

// User owns a tree of logged workouts. It is identified externally by the
// subject the identity provider puts into verified tokens.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;default:''" json:"name"`
	ExternalID string    `gorm:"column:external_id;type:varchar(128);uniqueIndex;not null" json:"externalId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Workouts []Workout `gorm:"constraint:OnDelete:CASCADE;" json:"workouts,omitempty"`
}

// WorkoutsOn returns pointers to every workout logged on the given date, in
// storage order. The schema does not make (user, date) unique, so more than
// one workout can match.
func (u *User) WorkoutsOn(date string) []*Workout {
	var matched []*Workout
	for i := range u.Workouts {
		if u.Workouts[i].Date == date {
			matched = append(matched, &u.Workouts[i])
		}
	}
	return matched
}
