package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a user-owned workout plan with an ordered list of exercises.
//
// The three session fields together form the persisted Workout Mode state:
// while a session is in progress they point at the exercise/set the user is
// on, so a client that lost its local state can resume exactly there. All
// three are unset when no session is active.
type Workout struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name    string             `bson:"name" json:"name"`

	Exercises []Exercise `bson:"exercises" json:"exercises"`

	LastActiveExerciseIndex *int       `bson:"lastActiveExerciseIndex,omitempty" json:"lastActiveExerciseIndex,omitempty"`
	LastActiveSetIndex      *int       `bson:"lastActiveSetIndex,omitempty" json:"lastActiveSetIndex,omitempty"`
	StartedAt               *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SessionPointer is the resume point of an active workout session.
type SessionPointer struct {
	ExerciseIndex int `json:"exerciseIndex"`
	SetIndex      int `json:"setIndex"`
}

// HasActiveSession reports whether a Workout Mode session is in progress.
func (w *Workout) HasActiveSession() bool {
	return w.LastActiveExerciseIndex != nil && w.LastActiveSetIndex != nil
}

// SessionState returns the current resume pointer, or nil if no session is
// active.
func (w *Workout) SessionState() *SessionPointer {
	if !w.HasActiveSession() {
		return nil
	}
	return &SessionPointer{
		ExerciseIndex: *w.LastActiveExerciseIndex,
		SetIndex:      *w.LastActiveSetIndex,
	}
}

// ExerciseByID returns the embedded exercise with the given id and its index
// in the sequence, or (nil, -1) when absent.
func (w *Workout) ExerciseByID(id primitive.ObjectID) (*Exercise, int) {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i], i
		}
	}
	return nil, -1
}
