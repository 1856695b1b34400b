package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityMetadata struct {
	IPAddress string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

// ActivityLog entries are append-only; there is deliberately no update or
// delete on this repository.
type ActivityLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	EventType string             `bson:"eventType" json:"eventType"`
	Payload   any                `bson:"payload" json:"payload"`
	Metadata  ActivityMetadata   `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type ActivityAppend struct {
	UserID    string
	EventType string
	Payload   any
	Metadata  ActivityMetadata
}

type ActivityRepository interface {
	Append(ctx context.Context, in ActivityAppend) (ActivityLog, error)
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]ActivityLog, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type MongoActivityRepository struct {
	coll *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{coll: db.Collection("activity_logs")}
}

func (r *MongoActivityRepository) Append(ctx context.Context, in ActivityAppend) (ActivityLog, error) {
	doc := ActivityLog{
		UserID:    in.UserID,
		EventType: in.EventType,
		Payload:   in.Payload,
		Metadata:  in.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return ActivityLog{}, translateMongoError(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc, nil
}

func (r *MongoActivityRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]ActivityLog, error) {
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cur.Close(ctx)

	out := make([]ActivityLog, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, translateMongoError(err)
	}
	return out, nil
}

func (r *MongoActivityRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, translateMongoError(err)
	}
	return n, nil
}

var _ ActivityRepository = (*MongoActivityRepository)(nil)
