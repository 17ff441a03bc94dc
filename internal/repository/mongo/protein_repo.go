package mongo

import (
	"context"
	"errors"
	"time"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const proteinCollectionName = "protein_records"

// mongoProteinRepository implements repository.ProteinRepository.
type mongoProteinRepository struct {
	collection *mongo.Collection
}

// NewMongoProteinRepository creates a new Protein repository.
func NewMongoProteinRepository(db *mongo.Database) repository.ProteinRepository {
	return &mongoProteinRepository{
		collection: db.Collection(proteinCollectionName),
	}
}

// GetOrCreate fetches the user's record, lazily inserting a fresh one on
// first access. The upsert keeps two concurrent first accesses from creating
// duplicate records (the unique userId index catches the rest).
func (r *mongoProteinRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID, defaultGoal int, today string) (*domain.ProteinRecord, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":        userID,
			"dailyGoal":     defaultGoal,
			"currentIntake": 0,
			"lastUpdated":   today,
			"updatedAt":     time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record domain.ProteinRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ResetDaily zeroes the counter for a new calendar day. The date guard in the
// filter makes the write a no-op when another request already reset today, so
// a double reset converges instead of failing.
func (r *mongoProteinRepository) ResetDaily(ctx context.Context, userID primitive.ObjectID, today string) (*domain.ProteinRecord, error) {
	filter := bson.M{
		"userId":      userID,
		"lastUpdated": bson.M{"$ne": today},
	}
	update := bson.M{
		"$set": bson.M{
			"currentIntake": 0,
			"lastUpdated":   today,
			"updatedAt":     time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record domain.ProteinRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Already stamped with today's date; return the current record.
			return r.get(ctx, userID)
		}
		return nil, err
	}
	return &record, nil
}

// AdjustIntake applies a delta to the counter, clamped to [0, maxIntake], in
// one atomic pipeline update. The lastUpdated guard fails the write if the
// day rolled over after the caller's reset check.
func (r *mongoProteinRepository) AdjustIntake(ctx context.Context, userID primitive.ObjectID, today string, delta, maxIntake int) (*domain.ProteinRecord, error) {
	filter := bson.M{
		"userId":      userID,
		"lastUpdated": today,
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"currentIntake": bson.M{
				"$min": bson.A{maxIntake, bson.M{
					"$max": bson.A{0, bson.M{"$add": bson.A{"$currentIntake", delta}}},
				}},
			},
			"updatedAt": time.Now().UTC(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record domain.ProteinRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &record, nil
}

// SetGoal updates the daily goal. Bounds checking belongs to the service.
func (r *mongoProteinRepository) SetGoal(ctx context.Context, userID primitive.ObjectID, goal int) (*domain.ProteinRecord, error) {
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$set": bson.M{
			"dailyGoal": goal,
			"updatedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record domain.ProteinRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *mongoProteinRepository) get(ctx context.Context, userID primitive.ObjectID) (*domain.ProteinRecord, error) {
	var record domain.ProteinRecord
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// EnsureProteinIndexes creates necessary indexes. Call during startup.
func EnsureProteinIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
