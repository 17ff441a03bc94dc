package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Protein intake defaults and bounds.
const (
	DefaultProteinGoal = 150
	MinProteinGoal     = 1
	MaxProteinGoal     = 500
	MaxDailyIntake     = 500
)

// ProteinRecord tracks a user's daily protein intake against their goal.
// One record per user, created lazily on first access and never deleted.
//
// LastUpdated holds the calendar date (YYYY-MM-DD, in the configured
// reference time zone) the intake counter was last touched; a read on a
// later date zeroes CurrentIntake before returning.
type ProteinRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	DailyGoal     int                `bson:"dailyGoal" json:"dailyGoal"`
	CurrentIntake int                `bson:"currentIntake" json:"currentIntake"`
	LastUpdated   string             `bson:"lastUpdated" json:"lastUpdated"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
