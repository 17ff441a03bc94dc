// internal/domain/exercise.go
package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single exercise within a workout. Exercises are embedded in
// their Workout document so the sequence order is the array order.
type Exercise struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Sets   int                `bson:"sets" json:"sets"`     // 1..99
	Reps   int                `bson:"reps" json:"reps"`     // 1..99
	Weight float64            `bson:"weight" json:"weight"` // 0..999.99, current working weight
}
