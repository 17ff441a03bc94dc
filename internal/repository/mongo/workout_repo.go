// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository.
//
// Exercises are embedded in the workout document, so every session-state
// mutation (pointer move, weight change, exercise removal) is a single
// document write and therefore atomic without multi-document transactions.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// ownerFilter scopes a workout lookup to its owner. Missing and foreign
// workouts are indistinguishable through this filter.
func ownerFilter(workoutID, ownerID primitive.ObjectID) bson.M {
	return bson.M{"_id": workoutID, "ownerId": ownerID}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.OwnerID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires ownerId and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Exercises == nil {
		workout.Exercises = []domain.Exercise{}
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout owned by the given user.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, workoutID, ownerID primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, ownerFilter(workoutID, ownerID)).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByOwner retrieves all workouts owned by the given user, oldest first.
func (r *mongoWorkoutRepository) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	filter := bson.M{"ownerId": ownerID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Delete removes a workout; the owner filter enforces ownership at the DB level.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, workoutID, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, ownerFilter(workoutID, ownerID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddExercise appends an exercise to the workout's sequence.
func (r *mongoWorkoutRepository) AddExercise(ctx context.Context, workoutID, ownerID primitive.ObjectID, exercise *domain.Exercise) error {
	if exercise.Name == "" {
		return errors.New("exercise requires a name")
	}
	exercise.ID = primitive.NewObjectID()

	update := bson.M{
		"$push": bson.M{"exercises": exercise},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, ownerFilter(workoutID, ownerID), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateExerciseWeight sets the working weight of one embedded exercise.
func (r *mongoWorkoutRepository) UpdateExerciseWeight(ctx context.Context, workoutID, ownerID, exerciseID primitive.ObjectID, weight float64) error {
	filter := ownerFilter(workoutID, ownerID)
	filter["exercises._id"] = exerciseID

	update := bson.M{
		"$set": bson.M{
			"exercises.$.weight": weight,
			"updatedAt":          time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveExercise pulls an exercise out of the workout's sequence.
// Re-clamping of an active session pointer is the service's job; the pull and
// the clamp are separate writes, but both are single-document and the clamp
// is idempotent.
func (r *mongoWorkoutRepository) RemoveExercise(ctx context.Context, workoutID, ownerID, exerciseID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"exercises": bson.M{"_id": exerciseID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, ownerFilter(workoutID, ownerID), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	if result.ModifiedCount == 0 {
		// Workout exists but had no exercise with that id.
		return repository.ErrNotFound
	}
	return nil
}

// GetActiveByOwner finds the owner's workout with an in-progress session.
func (r *mongoWorkoutRepository) GetActiveByOwner(ctx context.Context, ownerID primitive.ObjectID) (*domain.Workout, error) {
	filter := bson.M{
		"ownerId":                 ownerID,
		"lastActiveExerciseIndex": bson.M{"$ne": nil},
	}

	var workout domain.Workout
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// StartSession sets the resume pointer to (0,0) and records the start time.
func (r *mongoWorkoutRepository) StartSession(ctx context.Context, workoutID, ownerID primitive.ObjectID, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"lastActiveExerciseIndex": 0,
			"lastActiveSetIndex":      0,
			"startedAt":               startedAt,
			"updatedAt":               time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, ownerFilter(workoutID, ownerID), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AdvanceSession moves the resume pointer in one conditional write. The
// filter pins the pointer to the value the caller read, so two concurrent
// advances cannot both apply; the loser gets ErrConflict.
func (r *mongoWorkoutRepository) AdvanceSession(ctx context.Context, workoutID, ownerID primitive.ObjectID, from domain.SessionPointer, to *domain.SessionPointer, weightUpdate *repository.WeightUpdate) error {
	filter := ownerFilter(workoutID, ownerID)
	filter["lastActiveExerciseIndex"] = from.ExerciseIndex
	filter["lastActiveSetIndex"] = from.SetIndex

	set := bson.M{"updatedAt": time.Now().UTC()}
	if weightUpdate != nil {
		set[fmt.Sprintf("exercises.%d.weight", weightUpdate.ExerciseIndex)] = weightUpdate.Weight
	}

	update := bson.M{"$set": set}
	if to != nil {
		set["lastActiveExerciseIndex"] = to.ExerciseIndex
		set["lastActiveSetIndex"] = to.SetIndex
	} else {
		// Session complete: clear all session state.
		update["$unset"] = bson.M{
			"lastActiveExerciseIndex": "",
			"lastActiveSetIndex":      "",
			"startedAt":               "",
		}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

// SetSession overwrites the resume pointer unconditionally; nil clears it.
func (r *mongoWorkoutRepository) SetSession(ctx context.Context, workoutID, ownerID primitive.ObjectID, to *domain.SessionPointer) error {
	var update bson.M
	if to != nil {
		update = bson.M{
			"$set": bson.M{
				"lastActiveExerciseIndex": to.ExerciseIndex,
				"lastActiveSetIndex":      to.SetIndex,
				"updatedAt":               time.Now().UTC(),
			},
		}
	} else {
		update = bson.M{
			"$unset": bson.M{
				"lastActiveExerciseIndex": "",
				"lastActiveSetIndex":      "",
				"startedAt":               "",
			},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	}

	result, err := r.collection.UpdateOne(ctx, ownerFilter(workoutID, ownerID), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			// Active-session lookup: one query answers "is anything in progress".
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "lastActiveExerciseIndex", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
