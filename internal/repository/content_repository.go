package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Attachment struct {
	URL  string `bson:"url" json:"url"`
	Type string `bson:"type" json:"type"`
	Name string `bson:"name" json:"name"`
}

type LearningContent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Body        string             `bson:"body" json:"body"`
	Attachments []Attachment       `bson:"attachments" json:"attachments"`
	Tags        []string           `bson:"tags" json:"tags"`
	CreatedBy   string             `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ContentCreate struct {
	Title       string
	Body        string
	Attachments []Attachment
	Tags        []string
	CreatedBy   string
}

type ContentUpdate struct {
	Title       *string
	Body        *string
	Attachments []Attachment
	Tags        []string
}

// ContentFilter: tags is any-of, createdBy exact, search uses the collection's
// text index over title+body.
type ContentFilter struct {
	Tags      []string
	CreatedBy string
	Search    string
}

type ContentRepository interface {
	FindByID(ctx context.Context, id string) (LearningContent, error)
	List(ctx context.Context, f ContentFilter, skip, limit int) ([]LearningContent, error)
	Count(ctx context.Context, f ContentFilter) (int64, error)
	Create(ctx context.Context, in ContentCreate) (LearningContent, error)
	Update(ctx context.Context, id string, in ContentUpdate) (LearningContent, error)
	Delete(ctx context.Context, id string) error
}

type MongoContentRepository struct {
	coll *mongo.Collection
}

func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{coll: db.Collection("learning_contents")}
}

func (r *MongoContentRepository) FindByID(ctx context.Context, id string) (LearningContent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return LearningContent{}, ErrNotFound
	}

	var out LearningContent
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&out)
	if err != nil {
		return LearningContent{}, translateMongoError(err)
	}
	return out, nil
}

func contentQuery(f ContentFilter) bson.M {
	q := bson.M{}
	if len(f.Tags) > 0 {
		q["tags"] = bson.M{"$in": f.Tags}
	}
	if f.CreatedBy != "" {
		q["createdBy"] = f.CreatedBy
	}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	return q
}

func (r *MongoContentRepository) List(ctx context.Context, f ContentFilter, skip, limit int) ([]LearningContent, error) {
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, contentQuery(f), opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cur.Close(ctx)

	out := make([]LearningContent, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, translateMongoError(err)
	}
	return out, nil
}

func (r *MongoContentRepository) Count(ctx context.Context, f ContentFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, contentQuery(f))
	if err != nil {
		return 0, translateMongoError(err)
	}
	return n, nil
}

func (r *MongoContentRepository) Create(ctx context.Context, in ContentCreate) (LearningContent, error) {
	now := time.Now().UTC()
	doc := LearningContent{
		Title:       in.Title,
		Body:        in.Body,
		Attachments: in.Attachments,
		Tags:        in.Tags,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Attachments == nil {
		doc.Attachments = []Attachment{}
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return LearningContent{}, translateMongoError(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc, nil
}

func (r *MongoContentRepository) Update(ctx context.Context, id string, in ContentUpdate) (LearningContent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return LearningContent{}, ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Body != nil {
		set["body"] = *in.Body
	}
	if in.Attachments != nil {
		set["attachments"] = in.Attachments
	}
	if in.Tags != nil {
		set["tags"] = in.Tags
	}

	after := options.After
	var out LearningContent
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&out)
	if err != nil {
		return LearningContent{}, translateMongoError(err)
	}
	return out, nil
}

func (r *MongoContentRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ContentRepository = (*MongoContentRepository)(nil)
