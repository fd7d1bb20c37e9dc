package slot

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"ambica-diagnostic-service/internal/pkg/utils"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SlotMongoRepository struct {
	Collection *mongo.Collection
}

func NewSlotMongoRepository(db *mongo.Client, dbName string) contracts.SlotRepository {
	return &SlotMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionSlotBuckets),
	}
}

func (repo *SlotMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "timeSlot", Value: 1}}},
		{Keys: bson.D{{Key: "holders.grantedAt", Value: 1}}},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (repo *SlotMongoRepository) EnsureBucket(ctx context.Context, date, timeSlot string, capacity int, now time.Time) error {
	key := utils.BuildSlotKey(date, timeSlot)
	update := bson.M{
		"$setOnInsert": bson.M{
			"date":          date,
			"timeSlot":      timeSlot,
			"capacity":      capacity,
			"reservedCount": 0,
			"holders":       bson.A{},
			"createdAt":     now.UTC(),
			"updatedAt":     now.UTC(),
		},
	}

	_, err := repo.Collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		// a concurrent upsert created the bucket first
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (repo *SlotMongoRepository) TryGrant(ctx context.Context, key string, capacity int, holder models.SlotHolder, now time.Time) (*models.SlotBucket, error) {
	filter := bson.M{
		"_id":                   key,
		"reservedCount":         bson.M{"$lt": capacity},
		"holders.appointmentId": bson.M{"$ne": holder.AppointmentID},
	}
	update := bson.M{
		"$inc":  bson.M{"reservedCount": 1},
		"$push": bson.M{"holders": bson.M{"appointmentId": holder.AppointmentID, "grantedAt": holder.GrantedAt.UTC()}},
		"$set":  bson.M{"updatedAt": now.UTC()},
	}

	var bucket models.SlotBucket
	err := repo.Collection.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&bucket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &bucket, nil
}

func (repo *SlotMongoRepository) Release(ctx context.Context, key, appointmentID string, now time.Time) (bool, error) {
	filter := bson.M{
		"_id":                   key,
		"holders.appointmentId": appointmentID,
		"reservedCount":         bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc":  bson.M{"reservedCount": -1},
		"$pull": bson.M{"holders": bson.M{"appointmentId": appointmentID}},
		"$set":  bson.M{"updatedAt": now.UTC()},
	}

	result, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func (repo *SlotMongoRepository) FindByKey(ctx context.Context, key string) (*models.SlotBucket, error) {
	var bucket models.SlotBucket
	err := repo.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&bucket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &bucket, nil
}

func (repo *SlotMongoRepository) FindByDate(ctx context.Context, date string) ([]models.SlotBucket, error) {
	cursor, err := repo.Collection.Find(ctx, bson.M{"date": date}, options.Find().SetSort(bson.D{{Key: "timeSlot", Value: 1}}))
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	var buckets []models.SlotBucket
	err = cursor.All(ctx, &buckets)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return buckets, nil
}

func (repo *SlotMongoRepository) FindWithHoldersGrantedBefore(ctx context.Context, cutoff time.Time) ([]models.SlotBucket, error) {
	cursor, err := repo.Collection.Find(ctx, bson.M{"holders.grantedAt": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	var buckets []models.SlotBucket
	err = cursor.All(ctx, &buckets)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return buckets, nil
}
