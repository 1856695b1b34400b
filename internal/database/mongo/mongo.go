package mongo

import (
	"context"
	"fmt"
	"time"

	"allumino/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s := &Store{client: client, db: client.Database(cfg.Database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) Database() *mongo.Database {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("nil mongo store")
	}
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// ensureIndexes mirrors the collection indexes the repositories rely on, most
// importantly the title+body text index behind free-text content search.
func (s *Store) ensureIndexes(ctx context.Context) error {
	contentIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "body", Value: "text"}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	}
	if _, err := s.db.Collection("learning_contents").Indexes().CreateMany(ctx, contentIdx); err != nil {
		return fmt.Errorf("learning_contents indexes: %w", err)
	}

	resultIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "assessmentId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "assessmentId", Value: 1}}},
	}
	if _, err := s.db.Collection("assessment_results").Indexes().CreateMany(ctx, resultIdx); err != nil {
		return fmt.Errorf("assessment_results indexes: %w", err)
	}

	unique := true
	profileIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: &options.IndexOptions{Unique: &unique}},
	}
	if _, err := s.db.Collection("user_profiles").Indexes().CreateMany(ctx, profileIdx); err != nil {
		return fmt.Errorf("user_profiles indexes: %w", err)
	}

	activityIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "eventType", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := s.db.Collection("activity_logs").Indexes().CreateMany(ctx, activityIdx); err != nil {
		return fmt.Errorf("activity_logs indexes: %w", err)
	}

	return nil
}
