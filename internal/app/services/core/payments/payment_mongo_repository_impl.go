package payments

import (
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/models"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"ambica-diagnostic-service/internal/pkg/exceptions"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentMongoRepository struct {
	Collection *mongo.Collection
}

func NewPaymentMongoRepository(db *mongo.Client, dbName string) contracts.PaymentRepository {
	return &PaymentMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionPayments),
	}
}

func (repo *PaymentMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderRef", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
		{
			Keys: bson.D{{Key: "appointmentId", Value: 1}},
			Options: options.Index().
				SetName("appointmentId_pending_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": constvars.PaymentStatusPending}),
		},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (repo *PaymentMongoRepository) InsertPending(ctx context.Context, payment *models.Payment) (bool, error) {
	_, err := repo.Collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, exceptions.ErrMongoDBInsertDocument(err)
	}
	return true, nil
}

func (repo *PaymentMongoRepository) FindByOrderRef(ctx context.Context, orderRef string) (*models.Payment, error) {
	return repo.findOne(ctx, bson.M{"orderRef": orderRef})
}

func (repo *PaymentMongoRepository) FindPendingByAppointmentID(ctx context.Context, appointmentID string) (*models.Payment, error) {
	return repo.findOne(ctx, bson.M{"appointmentId": appointmentID, "status": constvars.PaymentStatusPending})
}

func (repo *PaymentMongoRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return repo.find(ctx, bson.M{"userId": userID}, opts)
}

func (repo *PaymentMongoRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{
		"status":    constvars.PaymentStatusPending,
		"createdAt": bson.M{"$lt": cutoff.UTC()},
	}
	return repo.find(ctx, filter, opts)
}

func (repo *PaymentMongoRepository) CompletePending(ctx context.Context, orderRef, paymentRef, signature string, at time.Time) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status":      constvars.PaymentStatusCompleted,
		"paymentRef":  paymentRef,
		"signature":   signature,
		"completedAt": at.UTC(),
		"updatedAt":   at.UTC(),
	}}
	return repo.updatePending(ctx, orderRef, update)
}

func (repo *PaymentMongoRepository) FailPending(ctx context.Context, orderRef, reason string, at time.Time) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status":        constvars.PaymentStatusFailed,
		"failureReason": reason,
		"failedAt":      at.UTC(),
		"updatedAt":     at.UTC(),
	}}
	return repo.updatePending(ctx, orderRef, update)
}

func (repo *PaymentMongoRepository) MarkRefundRequired(ctx context.Context, orderRef string, at time.Time) (*models.Payment, error) {
	filter := bson.M{"orderRef": orderRef, "status": constvars.PaymentStatusCompleted}
	update := bson.M{"$set": bson.M{"refundRequired": true, "updatedAt": at.UTC()}}
	return repo.findOneAndUpdate(ctx, filter, update)
}

func (repo *PaymentMongoRepository) RecordLateCapture(ctx context.Context, orderRef, paymentRef, signature string, at time.Time) (*models.Payment, error) {
	filter := bson.M{
		"orderRef":   orderRef,
		"status":     constvars.PaymentStatusFailed,
		"paymentRef": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{"$set": bson.M{
		"paymentRef":     paymentRef,
		"signature":      signature,
		"refundRequired": true,
		"capturedAt":     at.UTC(),
		"updatedAt":      at.UTC(),
	}}
	return repo.findOneAndUpdate(ctx, filter, update)
}

func (repo *PaymentMongoRepository) updatePending(ctx context.Context, orderRef string, update bson.M) (*models.Payment, error) {
	filter := bson.M{"orderRef": orderRef, "status": constvars.PaymentStatusPending}
	return repo.findOneAndUpdate(ctx, filter, update)
}

func (repo *PaymentMongoRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Payment, error) {
	var payment models.Payment
	err := repo.Collection.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &payment, nil
}

func (repo *PaymentMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Payment, error) {
	var payment models.Payment
	err := repo.Collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &payment, nil
}

func (repo *PaymentMongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Payment, error) {
	cursor, err := repo.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	var payments []models.Payment
	err = cursor.All(ctx, &payments)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return payments, nil
}
