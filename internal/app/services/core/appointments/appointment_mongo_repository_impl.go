package appointments

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

type AppointmentMongoRepository struct {
	Collection *mongo.Collection
}

func NewAppointmentMongoRepository(db *mongo.Client, dbName string) contracts.AppointmentRepository {
	return &AppointmentMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionAppointments),
	}
}

func (repo *AppointmentMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "timeSlot", Value: 1}}},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (repo *AppointmentMongoRepository) Insert(ctx context.Context, appointment *models.Appointment) error {
	_, err := repo.Collection.InsertOne(ctx, appointment)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *AppointmentMongoRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := repo.Collection.FindOne(ctx, bson.M{"_id": appointmentID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &appointment, nil
}

func (repo *AppointmentMongoRepository) FindByIDs(ctx context.Context, appointmentIDs []string) ([]models.Appointment, error) {
	if len(appointmentIDs) == 0 {
		return nil, nil
	}

	cursor, err := repo.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": appointmentIDs}})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	var appointments []models.Appointment
	err = cursor.All(ctx, &appointments)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return appointments, nil
}

func (repo *AppointmentMongoRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := repo.Collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	var appointments []models.Appointment
	err = cursor.All(ctx, &appointments)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return appointments, nil
}

func (repo *AppointmentMongoRepository) FindAll(ctx context.Context, page, pageSize int) ([]models.Appointment, int, error) {
	total, err := repo.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := repo.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}

	var appointments []models.Appointment
	err = cursor.All(ctx, &appointments)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return appointments, int(total), nil
}

func (repo *AppointmentMongoRepository) Transition(ctx context.Context, appointmentID string, transition models.AppointmentTransition) (*models.Appointment, error) {
	filter := bson.M{
		"_id":    appointmentID,
		"status": bson.M{"$in": transition.From},
	}
	update := bson.M{"$set": buildTransitionSet(transition)}

	var appointment models.Appointment
	err := repo.Collection.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return &appointment, nil
}

func (repo *AppointmentMongoRepository) MarkSlotReleased(ctx context.Context, appointmentID string, at time.Time) error {
	filter := bson.M{
		"_id":            appointmentID,
		"slotReleasedAt": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"slotReleasedAt": at.UTC(), "updatedAt": at.UTC()}}

	_, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (repo *AppointmentMongoRepository) MarkPaymentFailed(ctx context.Context, appointmentID string, at time.Time) (bool, error) {
	filter := bson.M{
		"_id":           appointmentID,
		"status":        constvars.AppointmentStatusPending,
		"paymentStatus": constvars.PaymentStatusPending,
	}
	update := bson.M{"$set": bson.M{"paymentStatus": constvars.PaymentStatusFailed, "updatedAt": at.UTC()}}

	result, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

// buildTransitionSet collects the fields written alongside the new status.
func buildTransitionSet(transition models.AppointmentTransition) bson.M {
	at := transition.At.UTC()
	set := bson.M{
		"status":    transition.To,
		"updatedAt": at,
	}
	if transition.PaymentStatus != "" {
		set["paymentStatus"] = transition.PaymentStatus
	}
	if transition.PaymentID != "" {
		set["paymentId"] = transition.PaymentID
	}

	switch transition.To {
	case constvars.AppointmentStatusConfirmed:
		set["confirmedAt"] = at
	case constvars.AppointmentStatusCancelled:
		set["cancelledAt"] = at
		if transition.Reason != "" {
			set["cancellationReason"] = transition.Reason
		}
		if transition.Actor != "" {
			set["cancelledBy"] = transition.Actor
		}
	case constvars.AppointmentStatusCompleted:
		set["completedAt"] = at
		if transition.ReportKey != "" {
			set["reportObjectKey"] = transition.ReportKey
		}
	}
	return set
}
