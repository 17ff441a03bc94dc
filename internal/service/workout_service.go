package service

import (
	"context"
	"errors"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	// ErrWorkoutNotFound covers both a missing workout and one owned by a
	// different user; callers must not be able to tell these apart.
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidValue     = errors.New("invalid value")
)

// Validation bounds for workouts and exercises.
const (
	maxNameLength = 30
	minSets       = 1
	maxSets       = 99
	minReps       = 1
	maxReps       = 99
	maxWeight     = 999.99
)

// WorkoutService handles workout and exercise CRUD, always scoped to the
// owning user.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, name string) (*domain.Workout, error)
	GetWorkouts(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) error

	AddExercise(ctx context.Context, ownerID, workoutID primitive.ObjectID, name string, sets, reps int, weight float64) (*domain.Exercise, error)
	GetExercises(ctx context.Context, ownerID, workoutID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExerciseWeight(ctx context.Context, ownerID, workoutID, exerciseID primitive.ObjectID, weight float64) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, ownerID, workoutID, exerciseID primitive.ObjectID) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository) WorkoutService {
	return &workoutService{workoutRepo: workoutRepo}
}

// CreateWorkout creates an empty workout for the owner.
func (s *workoutService) CreateWorkout(ctx context.Context, ownerID primitive.ObjectID, name string) (*domain.Workout, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidValue
	}
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create a workout")
	}

	workout := &domain.Workout{
		OwnerID:   ownerID,
		Name:      name,
		Exercises: []domain.Exercise{},
	}
	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	return s.workoutRepo.GetByID(ctx, workoutID, ownerID)
}

// GetWorkouts lists the owner's workouts.
func (s *workoutService) GetWorkouts(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.GetByOwner(ctx, ownerID)
}

// GetWorkout fetches one workout, enforcing ownership.
func (s *workoutService) GetWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// DeleteWorkout removes a workout and everything embedded in it.
func (s *workoutService) DeleteWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// AddExercise appends a new exercise to the workout's sequence.
func (s *workoutService) AddExercise(ctx context.Context, ownerID, workoutID primitive.ObjectID, name string, sets, reps int, weight float64) (*domain.Exercise, error) {
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidValue
	}
	if sets < minSets || sets > maxSets || reps < minReps || reps > maxReps {
		return nil, ErrInvalidValue
	}
	if weight < 0 || weight > maxWeight {
		return nil, ErrInvalidValue
	}

	exercise := &domain.Exercise{
		Name:   name,
		Sets:   sets,
		Reps:   reps,
		Weight: weight,
	}
	err := s.workoutRepo.AddExercise(ctx, workoutID, ownerID, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercises lists the workout's exercises in sequence order.
func (s *workoutService) GetExercises(ctx context.Context, ownerID, workoutID primitive.ObjectID) ([]domain.Exercise, error) {
	workout, err := s.GetWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	return workout.Exercises, nil
}

// UpdateExerciseWeight changes the working weight of one exercise. Weight is
// the only mutable exercise field after creation.
func (s *workoutService) UpdateExerciseWeight(ctx context.Context, ownerID, workoutID, exerciseID primitive.ObjectID, weight float64) (*domain.Exercise, error) {
	if weight < 0 || weight > maxWeight {
		return nil, ErrInvalidValue
	}

	workout, err := s.GetWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	exercise, _ := workout.ExerciseByID(exerciseID)
	if exercise == nil {
		return nil, ErrExerciseNotFound
	}

	err = s.workoutRepo.UpdateExerciseWeight(ctx, workoutID, ownerID, exerciseID, weight)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	exercise.Weight = weight
	return exercise, nil
}

// DeleteExercise removes an exercise and, when a session pointer referenced a
// now-invalid position, re-clamps or clears that pointer so it never dangles.
func (s *workoutService) DeleteExercise(ctx context.Context, ownerID, workoutID, exerciseID primitive.ObjectID) error {
	workout, err := s.GetWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return err
	}
	if _, idx := workout.ExerciseByID(exerciseID); idx < 0 {
		return ErrExerciseNotFound
	}

	err = s.workoutRepo.RemoveExercise(ctx, workoutID, ownerID, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	return s.reclampSession(ctx, ownerID, workoutID)
}

// reclampSession re-reads the workout after an exercise removal and repairs
// the resume pointer: clear it when no exercises remain, clamp the exercise
// index to the shrunk list, and clamp the set index into the pointed-at
// exercise's range. A pointer that is still valid is left untouched.
func (s *workoutService) reclampSession(ctx context.Context, ownerID, workoutID primitive.ObjectID) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	pointer := workout.SessionState()
	if pointer == nil {
		return nil
	}

	if len(workout.Exercises) == 0 {
		return s.workoutRepo.SetSession(ctx, workoutID, ownerID, nil)
	}

	clamped := *pointer
	if clamped.ExerciseIndex >= len(workout.Exercises) {
		clamped.ExerciseIndex = len(workout.Exercises) - 1
		clamped.SetIndex = 0
	}
	if max := workout.Exercises[clamped.ExerciseIndex].Sets - 1; clamped.SetIndex > max {
		clamped.SetIndex = max
	}

	if clamped == *pointer {
		return nil
	}
	return s.workoutRepo.SetSession(ctx, workoutID, ownerID, &clamped)
}
