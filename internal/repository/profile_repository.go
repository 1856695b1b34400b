package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserProfile is the document-store extension of a relational user: two
// open-ended maps the frontend can shape freely.
type UserProfile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"userId"`
	Preferences  map[string]any     `bson:"preferences" json:"preferences"`
	CustomFields map[string]any     `bson:"customFields" json:"customFields"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ProfileUpdate struct {
	Preferences  map[string]any
	CustomFields map[string]any
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (UserProfile, error)
	CreateEmpty(ctx context.Context, userID string) (UserProfile, error)
	Upsert(ctx context.Context, userID string, in ProfileUpdate) (UserProfile, error)
}

type MongoProfileRepository struct {
	coll *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection("user_profiles")}
}

func (r *MongoProfileRepository) FindByUserID(ctx context.Context, userID string) (UserProfile, error) {
	var out UserProfile
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&out)
	if err != nil {
		return UserProfile{}, translateMongoError(err)
	}
	return out, nil
}

func (r *MongoProfileRepository) CreateEmpty(ctx context.Context, userID string) (UserProfile, error) {
	now := time.Now().UTC()
	doc := UserProfile{
		UserID:       userID,
		Preferences:  map[string]any{},
		CustomFields: map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return UserProfile{}, translateMongoError(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc, nil
}

func (r *MongoProfileRepository) Upsert(ctx context.Context, userID string, in ProfileUpdate) (UserProfile, error) {
	now := time.Now().UTC()

	set := bson.M{"updatedAt": now}
	if in.Preferences != nil {
		set["preferences"] = in.Preferences
	}
	if in.CustomFields != nil {
		set["customFields"] = in.CustomFields
	}

	upsert := true
	after := options.After
	var out UserProfile
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"userId":    userID,
				"createdAt": now,
			},
		},
		&options.FindOneAndUpdateOptions{Upsert: &upsert, ReturnDocument: &after},
	).Decode(&out)
	if err != nil {
		return UserProfile{}, translateMongoError(err)
	}
	return out, nil
}

var _ ProfileRepository = (*MongoProfileRepository)(nil)
