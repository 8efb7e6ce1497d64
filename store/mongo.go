package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/core/models"
)

// Mongo is the document repository. One document per attendance record,
// breaks embedded.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongo(uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection("attendance_records"),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func notDeleted() bson.M {
	return bson.M{"deleted_at": bson.M{"$exists": false}}
}

func (m *Mongo) Save(ctx context.Context, record *models.AttendanceRecord) error {
	_, err := m.coll.ReplaceOne(ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (m *Mongo) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	filter := notDeleted()
	filter["_id"] = id

	var record models.AttendanceRecord
	err := m.coll.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (m *Mongo) Find(ctx context.Context, filter core.RecordFilter) ([]models.AttendanceRecord, int64, error) {
	query := notDeleted()
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.From != nil || filter.To != nil {
		span := bson.M{}
		if filter.From != nil {
			span["$gte"] = *filter.From
		}
		if filter.To != nil {
			span["$lte"] = *filter.To
		}
		query["clock_in"] = span
	}

	total, err := m.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "clock_in", Value: -1}})
	if filter.Offset > 0 {
		opts = opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts = opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := m.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var records []models.AttendanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (m *Mongo) FindActive(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	filter := notDeleted()
	filter["user_id"] = userID
	filter["status"] = models.StatusActive

	var record models.AttendanceRecord
	err := m.coll.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (m *Mongo) Delete(ctx context.Context, id string, at time.Time) error {
	filter := notDeleted()
	filter["_id"] = id

	result, err := m.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"deleted_at": at}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("attendance record %s: %w", id, core.ErrNotFound)
	}
	return nil
}
