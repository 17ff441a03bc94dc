package repository

import (
	"context"
	"time"

	"liftlog/fitness-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
// Every read and mutation is scoped by the owning user: a workout that exists
// but belongs to someone else behaves exactly like a missing one (ErrNotFound),
// so callers cannot probe for other users' data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, workoutID, ownerID primitive.ObjectID) (*domain.Workout, error)
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	Delete(ctx context.Context, workoutID, ownerID primitive.ObjectID) error

	AddExercise(ctx context.Context, workoutID, ownerID primitive.ObjectID, exercise *domain.Exercise) error
	UpdateExerciseWeight(ctx context.Context, workoutID, ownerID, exerciseID primitive.ObjectID, weight float64) error
	RemoveExercise(ctx context.Context, workoutID, ownerID, exerciseID primitive.ObjectID) error

	// GetActiveByOwner returns the owner's workout with an active session, or
	// ErrNotFound when none is in progress.
	GetActiveByOwner(ctx context.Context, ownerID primitive.ObjectID) (*domain.Workout, error)

	// StartSession sets the resume pointer to (0,0) and stamps startedAt.
	StartSession(ctx context.Context, workoutID, ownerID primitive.ObjectID, startedAt time.Time) error

	// AdvanceSession moves the resume pointer from `from` to `to` in a single
	// atomic write, optionally updating the weight of the exercise at
	// weightUpdate's index in the same write. A nil `to` clears the session
	// (completion). The write is conditional on the stored pointer still
	// equalling `from`; ErrConflict is returned when it no longer does.
	AdvanceSession(ctx context.Context, workoutID, ownerID primitive.ObjectID, from domain.SessionPointer, to *domain.SessionPointer, weightUpdate *WeightUpdate) error

	// SetSession overwrites the resume pointer (nil clears it), regardless of
	// its current value. Used for explicit exits and pointer re-clamping.
	SetSession(ctx context.Context, workoutID, ownerID primitive.ObjectID, to *domain.SessionPointer) error
}

// WeightUpdate carries a working-weight change applied atomically with a
// session advance when an exercise is finished.
type WeightUpdate struct {
	ExerciseIndex int
	Weight        float64
}

// ProteinRepository defines the interface for interacting with protein
// tracking data. Records are keyed by user id; `today` arguments are calendar
// dates formatted YYYY-MM-DD in the service's reference time zone.
type ProteinRepository interface {
	// GetOrCreate returns the user's record, inserting one with the default
	// goal and a zero counter when the user has none yet.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID, defaultGoal int, today string) (*domain.ProteinRecord, error)

	// ResetDaily zeroes the intake counter and stamps today's date, but only
	// if the stored date differs from today. The conditional write makes
	// concurrent resets at a midnight rollover converge on the same state.
	// Returns the record after the reset (or the unchanged record if another
	// request already reset it).
	ResetDaily(ctx context.Context, userID primitive.ObjectID, today string) (*domain.ProteinRecord, error)

	// AdjustIntake adds delta to the intake counter, clamping the result to
	// [0, maxIntake], in a single atomic write conditional on the record
	// still being stamped with today's date. ErrConflict signals the date
	// rolled over between the caller's reset check and this write.
	AdjustIntake(ctx context.Context, userID primitive.ObjectID, today string, delta, maxIntake int) (*domain.ProteinRecord, error)

	SetGoal(ctx context.Context, userID primitive.ObjectID, goal int) (*domain.ProteinRecord, error)
}
