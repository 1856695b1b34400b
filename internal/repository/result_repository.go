package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionResponse struct {
	QuestionID string   `bson:"questionId" json:"questionId"`
	Answer     any      `bson:"answer" json:"answer"`
	Score      *float64 `bson:"score,omitempty" json:"score,omitempty"`
}

// AssessmentResult is the document half of an assessment: the relational row
// holds the typed metadata, this holds whatever the client submitted.
type AssessmentResult struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssessmentID string             `bson:"assessmentId" json:"assessmentId"`
	UserID       string             `bson:"userId" json:"userId"`
	RawData      any                `bson:"rawData" json:"rawData"`
	Responses    []QuestionResponse `bson:"responses,omitempty" json:"responses,omitempty"`
	AIAnalysis   any                `bson:"aiAnalysis,omitempty" json:"aiAnalysis,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ResultCreate struct {
	AssessmentID string
	UserID       string
	RawData      any
	Responses    []QuestionResponse
}

type ResultRepository interface {
	Create(ctx context.Context, in ResultCreate) (AssessmentResult, error)
	FindByAssessmentID(ctx context.Context, assessmentID string) (AssessmentResult, error)
}

type MongoResultRepository struct {
	coll *mongo.Collection
}

func NewMongoResultRepository(db *mongo.Database) *MongoResultRepository {
	return &MongoResultRepository{coll: db.Collection("assessment_results")}
}

func (r *MongoResultRepository) Create(ctx context.Context, in ResultCreate) (AssessmentResult, error) {
	now := time.Now().UTC()
	doc := AssessmentResult{
		AssessmentID: in.AssessmentID,
		UserID:       in.UserID,
		RawData:      in.RawData,
		Responses:    in.Responses,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return AssessmentResult{}, translateMongoError(err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc, nil
}

func (r *MongoResultRepository) FindByAssessmentID(ctx context.Context, assessmentID string) (AssessmentResult, error) {
	var out AssessmentResult
	err := r.coll.FindOne(ctx, bson.M{"assessmentId": assessmentID}).Decode(&out)
	if err != nil {
		return AssessmentResult{}, translateMongoError(err)
	}
	return out, nil
}

var _ ResultRepository = (*MongoResultRepository)(nil)
