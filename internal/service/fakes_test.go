package service

import (
	"context"
	"sync"
	"time"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mimic the store's behavior closely enough
// for service tests: owner scoping, conditional (compare-and-set) session
// writes, clamped intake adjustments and the conditional daily reset.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		found := u
		return &found, nil
	}
	return nil, repository.ErrNotFound
}

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.Workout

	// forcedAdvanceErr, when set, is returned by the next AdvanceSession call.
	forcedAdvanceErr error
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]domain.Workout)}
}

func copyWorkout(w domain.Workout) domain.Workout {
	out := w
	out.Exercises = append([]domain.Exercise(nil), w.Exercises...)
	if w.LastActiveExerciseIndex != nil {
		v := *w.LastActiveExerciseIndex
		out.LastActiveExerciseIndex = &v
	}
	if w.LastActiveSetIndex != nil {
		v := *w.LastActiveSetIndex
		out.LastActiveSetIndex = &v
	}
	if w.StartedAt != nil {
		v := *w.StartedAt
		out.StartedAt = &v
	}
	return out
}

func (r *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Exercises == nil {
		workout.Exercises = []domain.Exercise{}
	}
	r.workouts[workout.ID] = copyWorkout(*workout)
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) getScoped(workoutID, ownerID primitive.ObjectID) (domain.Workout, bool) {
	w, ok := r.workouts[workoutID]
	if !ok || w.OwnerID != ownerID {
		return domain.Workout{}, false
	}
	return w, true
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, workoutID, ownerID primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyWorkout(w)
	return &out, nil
}

func (r *fakeWorkoutRepo) GetByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Workout{}
	for _, w := range r.workouts {
		if w.OwnerID == ownerID {
			out = append(out, copyWorkout(w))
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, workoutID, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.getScoped(workoutID, ownerID); !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, workoutID)
	return nil
}

func (r *fakeWorkoutRepo) AddExercise(_ context.Context, workoutID, ownerID primitive.ObjectID, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return repository.ErrNotFound
	}
	exercise.ID = primitive.NewObjectID()
	w.Exercises = append(w.Exercises, *exercise)
	r.workouts[workoutID] = w
	return nil
}

func (r *fakeWorkoutRepo) UpdateExerciseWeight(_ context.Context, workoutID, ownerID, exerciseID primitive.ObjectID, weight float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return repository.ErrNotFound
	}
	for i := range w.Exercises {
		if w.Exercises[i].ID == exerciseID {
			w.Exercises[i].Weight = weight
			r.workouts[workoutID] = w
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWorkoutRepo) RemoveExercise(_ context.Context, workoutID, ownerID, exerciseID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return repository.ErrNotFound
	}
	for i := range w.Exercises {
		if w.Exercises[i].ID == exerciseID {
			w.Exercises = append(w.Exercises[:i:i], w.Exercises[i+1:]...)
			r.workouts[workoutID] = w
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWorkoutRepo) GetActiveByOwner(_ context.Context, ownerID primitive.ObjectID) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workouts {
		if w.OwnerID == ownerID && w.HasActiveSession() {
			out := copyWorkout(w)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) StartSession(_ context.Context, workoutID, ownerID primitive.ObjectID, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return repository.ErrNotFound
	}
	zero := 0
	exIdx, setIdx := zero, zero
	w.LastActiveExerciseIndex = &exIdx
	w.LastActiveSetIndex = &setIdx
	w.StartedAt = &startedAt
	r.workouts[workoutID] = w
	return nil
}

func (r *fakeWorkoutRepo) AdvanceSession(_ context.Context, workoutID, ownerID primitive.ObjectID, from domain.SessionPointer, to *domain.SessionPointer, weightUpdate *repository.WeightUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forcedAdvanceErr != nil {
		err := r.forcedAdvanceErr
		r.forcedAdvanceErr = nil
		return err
	}
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return repository.ErrConflict
	}
	current := w.SessionState()
	if current == nil || *current != from {
		return repository.ErrConflict
	}
	if weightUpdate != nil && weightUpdate.ExerciseIndex < len(w.Exercises) {
		w.Exercises[weightUpdate.ExerciseIndex].Weight = weightUpdate.Weight
	}
	if to != nil {
		exIdx, setIdx := to.ExerciseIndex, to.SetIndex
		w.LastActiveExerciseIndex = &exIdx
		w.LastActiveSetIndex = &setIdx
	} else {
		w.LastActiveExerciseIndex = nil
		w.LastActiveSetIndex = nil
		w.StartedAt = nil
	}
	r.workouts[workoutID] = w
	return nil
}

func (r *fakeWorkoutRepo) SetSession(_ context.Context, workoutID, ownerID primitive.ObjectID, to *domain.SessionPointer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.getScoped(workoutID, ownerID)
	if !ok {
		return repository.ErrNotFound
	}
	if to != nil {
		exIdx, setIdx := to.ExerciseIndex, to.SetIndex
		w.LastActiveExerciseIndex = &exIdx
		w.LastActiveSetIndex = &setIdx
	} else {
		w.LastActiveExerciseIndex = nil
		w.LastActiveSetIndex = nil
		w.StartedAt = nil
	}
	r.workouts[workoutID] = w
	return nil
}

type fakeProteinRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]domain.ProteinRecord
}

func newFakeProteinRepo() *fakeProteinRepo {
	return &fakeProteinRepo{records: make(map[primitive.ObjectID]domain.ProteinRecord)}
}

func (r *fakeProteinRepo) GetOrCreate(_ context.Context, userID primitive.ObjectID, defaultGoal int, today string) (*domain.ProteinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[userID]; ok {
		found := rec
		return &found, nil
	}
	rec := domain.ProteinRecord{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		DailyGoal:     defaultGoal,
		CurrentIntake: 0,
		LastUpdated:   today,
		UpdatedAt:     time.Now().UTC(),
	}
	r.records[userID] = rec
	return &rec, nil
}

func (r *fakeProteinRepo) ResetDaily(_ context.Context, userID primitive.ObjectID, today string) (*domain.ProteinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if rec.LastUpdated != today {
		rec.CurrentIntake = 0
		rec.LastUpdated = today
		r.records[userID] = rec
	}
	found := rec
	return &found, nil
}

func (r *fakeProteinRepo) AdjustIntake(_ context.Context, userID primitive.ObjectID, today string, delta, maxIntake int) (*domain.ProteinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok || rec.LastUpdated != today {
		return nil, repository.ErrConflict
	}
	rec.CurrentIntake += delta
	if rec.CurrentIntake < 0 {
		rec.CurrentIntake = 0
	}
	if rec.CurrentIntake > maxIntake {
		rec.CurrentIntake = maxIntake
	}
	r.records[userID] = rec
	found := rec
	return &found, nil
}

func (r *fakeProteinRepo) SetGoal(_ context.Context, userID primitive.ObjectID, goal int) (*domain.ProteinRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.DailyGoal = goal
	r.records[userID] = rec
	found := rec
	return &found, nil
}
