package service

import (
	"context"
	"errors"
	"time"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoActiveSession = errors.New("workout has no active session")
	ErrSessionConflict = errors.New("session was modified by a concurrent request")
)

// SessionState describes the Workout Mode state of one workout as returned
// to clients. Pointer is nil when Active is false.
type SessionState struct {
	WorkoutID primitive.ObjectID     `json:"workoutId"`
	Active    bool                   `json:"active"`
	Completed bool                   `json:"completed,omitempty"` // true right after the final set
	Pointer   *domain.SessionPointer `json:"pointer,omitempty"`
	StartedAt *time.Time             `json:"startedAt,omitempty"`
}

// SessionService drives Workout Mode: it owns the persisted resume pointer
// that lets a client recover an in-progress workout after losing all local
// state. Progress is persisted before it is reported, so a crash between two
// advances never loses more than the unreported one.
type SessionService interface {
	// BeginSession starts a session at exercise 0, set 0. A workout with no
	// exercises completes immediately and never becomes active.
	BeginSession(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*SessionState, error)

	// Advance records completion of the current set. Finishing the last set
	// of an exercise moves to the next exercise's first set and applies the
	// optional weight update to the finished exercise; finishing the last
	// exercise ends the session.
	Advance(ctx context.Context, ownerID, workoutID primitive.ObjectID, weight *float64) (*SessionState, error)

	// GetResumeState reports where to resume, or an inactive state. An
	// inactive session is a valid answer, not an error.
	GetResumeState(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*SessionState, error)

	// GetActiveSession answers "does this user have anything in progress?"
	// across all their workouts.
	GetActiveSession(ctx context.Context, ownerID primitive.ObjectID) (*SessionState, error)

	// ExitSession abandons an in-progress session, clearing the pointer.
	ExitSession(ctx context.Context, ownerID, workoutID primitive.ObjectID) error
}

// sessionService implements the SessionService interface.
type sessionService struct {
	workoutRepo repository.WorkoutRepository
	now         func() time.Time
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(workoutRepo repository.WorkoutRepository) SessionService {
	return &sessionService{
		workoutRepo: workoutRepo,
		now:         time.Now,
	}
}

func (s *sessionService) getWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// BeginSession starts (or restarts) Workout Mode for a workout.
func (s *sessionService) BeginSession(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*SessionState, error) {
	workout, err := s.getWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}

	if len(workout.Exercises) == 0 {
		// Nothing to step through: the session completes on the spot and no
		// pointer is persisted, keeping the pointer-validity invariant.
		return &SessionState{WorkoutID: workout.ID, Active: false, Completed: true}, nil
	}

	startedAt := s.now().UTC()
	if err := s.workoutRepo.StartSession(ctx, workoutID, ownerID, startedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	return &SessionState{
		WorkoutID: workout.ID,
		Active:    true,
		Pointer:   &domain.SessionPointer{ExerciseIndex: 0, SetIndex: 0},
		StartedAt: &startedAt,
	}, nil
}

// Advance moves the resume pointer past the just-completed set.
func (s *sessionService) Advance(ctx context.Context, ownerID, workoutID primitive.ObjectID, weight *float64) (*SessionState, error) {
	workout, err := s.getWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	current := workout.SessionState()
	if current == nil {
		return nil, ErrNoActiveSession
	}
	if current.ExerciseIndex >= len(workout.Exercises) {
		// Stored pointer no longer references a valid exercise; treat the
		// session as over rather than advancing into nothing.
		if err := s.workoutRepo.SetSession(ctx, workoutID, ownerID, nil); err != nil {
			return nil, err
		}
		return nil, ErrNoActiveSession
	}

	exercise := workout.Exercises[current.ExerciseIndex]

	var next *domain.SessionPointer
	var weightUpdate *repository.WeightUpdate
	if current.SetIndex+1 < exercise.Sets {
		next = &domain.SessionPointer{
			ExerciseIndex: current.ExerciseIndex,
			SetIndex:      current.SetIndex + 1,
		}
	} else {
		// Exercise finished: the optional weight update lands on it in the
		// same write that moves the pointer.
		if weight != nil {
			if *weight < 0 || *weight > maxWeight {
				return nil, ErrInvalidValue
			}
			weightUpdate = &repository.WeightUpdate{
				ExerciseIndex: current.ExerciseIndex,
				Weight:        *weight,
			}
		}
		if current.ExerciseIndex+1 < len(workout.Exercises) {
			next = &domain.SessionPointer{
				ExerciseIndex: current.ExerciseIndex + 1,
				SetIndex:      0,
			}
		}
		// next stays nil when this was the last exercise: session complete.
	}

	err = s.workoutRepo.AdvanceSession(ctx, workoutID, ownerID, *current, next, weightUpdate)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSessionConflict
		}
		return nil, err
	}

	state := &SessionState{WorkoutID: workout.ID}
	if next != nil {
		state.Active = true
		state.Pointer = next
		state.StartedAt = workout.StartedAt
	} else {
		state.Completed = true
	}
	return state, nil
}

// GetResumeState returns the persisted resume point for one workout.
func (s *sessionService) GetResumeState(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*SessionState, error) {
	workout, err := s.getWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}

	state := &SessionState{WorkoutID: workout.ID}
	if pointer := workout.SessionState(); pointer != nil {
		state.Active = true
		state.Pointer = pointer
		state.StartedAt = workout.StartedAt
	}
	return state, nil
}

// GetActiveSession looks across all the user's workouts for one in progress.
func (s *sessionService) GetActiveSession(ctx context.Context, ownerID primitive.ObjectID) (*SessionState, error) {
	workout, err := s.workoutRepo.GetActiveByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &SessionState{Active: false}, nil
		}
		return nil, err
	}

	return &SessionState{
		WorkoutID: workout.ID,
		Active:    true,
		Pointer:   workout.SessionState(),
		StartedAt: workout.StartedAt,
	}, nil
}

// ExitSession clears the session without completing it.
func (s *sessionService) ExitSession(ctx context.Context, ownerID, workoutID primitive.ObjectID) error {
	workout, err := s.getWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return err
	}
	if !workout.HasActiveSession() {
		return ErrNoActiveSession
	}
	return s.workoutRepo.SetSession(ctx, workoutID, ownerID, nil)
}
