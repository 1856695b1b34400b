package app

import (
	"context"
	"io/fs"
	"time"

	"allumino/internal/config"
	"allumino/internal/database"
	"allumino/internal/database/migration"
	dbmongo "allumino/internal/database/mongo"
	dbpostgres "allumino/internal/database/postgres"
	"allumino/internal/delivery/http/handler"
	"allumino/internal/delivery/http/middleware"
	"allumino/internal/delivery/http/routes"
	"allumino/internal/infrastructure/cache"
	"allumino/internal/infrastructure/ml"
	"allumino/internal/pkg/auth0"
	"allumino/internal/pkg/jwt"
	"allumino/internal/pkg/logger"
	"allumino/internal/repository"
	"allumino/internal/usecase"
	"allumino/internal/ws"
)

// Container owns every long-lived dependency and the wiring between them.
type Container struct {
	Config config.Config
	Log    *logger.Logger

	DB    database.DB
	Mongo *dbmongo.Store
	Redis *cache.Redis
	Hub   *ws.Hub

	Registry *routes.Registry

	hubCancel context.CancelFunc
}

// NewContainer connects the stores, runs migrations, and builds the full
// handler graph. Migrations come from an embedded filesystem passed in by the
// binary so a deployed artifact never depends on files on disk.
func NewContainer(cfg config.Config, log *logger.Logger, migrations fs.FS) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	if err := (migration.Runner{FS: migrations}).Run(ctx, db.SQLDB()); err != nil {
		db.Close()
		return nil, err
	}

	mongoStore, err := dbmongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		db.Close()
		return nil, err
	}

	redis := cache.NewRedis(cfg.Redis, log)

	mongoDB := mongoStore.Database()
	userRepo := repository.NewPostgresUserRepository(db)
	pathwayRepo := repository.NewPostgresPathwayRepository(db)
	assessmentRepo := repository.NewPostgresAssessmentRepository(db)
	opportunityRepo := repository.NewPostgresOpportunityRepository(db)
	contentRepo := repository.NewMongoContentRepository(mongoDB)
	resultRepo := repository.NewMongoResultRepository(mongoDB)
	profileRepo := repository.NewMongoProfileRepository(mongoDB)
	activityRepo := repository.NewMongoActivityRepository(mongoDB)

	hub := ws.NewHub(log)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	userUC := usecase.NewUserUsecase(userRepo, profileRepo, activityRepo, hub, log)
	pathwayUC := usecase.NewPathwayUsecase(pathwayRepo, contentRepo, config.ContentResolvePolicy(), log)
	assessmentUC := usecase.NewAssessmentUsecase(assessmentRepo, resultRepo, log)
	opportunityUC := usecase.NewOpportunityUsecase(opportunityRepo)
	contentUC := usecase.NewContentUsecase(contentRepo)

	tokenSvc := jwt.NewHMACService(cfg.Session.Secret, cfg.Session.ExpiresIn)
	providerClient := auth0.NewClient(cfg.Auth0)
	providerVerifier := auth0.NewVerifier(cfg.Auth0.Domain, cfg.Auth0.Audience)

	authGuard := middleware.NewAuthMiddleware(
		middleware.Auth0Verifier{V: providerVerifier},
		middleware.ServiceVerifier{JWT: tokenSvc},
	)

	mlClient := ml.NewClient(cfg.ML.BaseURL, cfg.ML.Timeout, log)

	registry := &routes.Registry{
		Health:      handler.NewHealthHandler(cfg.App, db, mongoStore, redis),
		Auth:        handler.NewAuthHandler(providerClient, tokenSvc, userUC, cfg.App.FrontendURL),
		User:        handler.NewUserHandler(userUC),
		Pathway:     handler.NewPathwayHandler(pathwayUC),
		Assessment:  handler.NewAssessmentHandler(assessmentUC),
		Opportunity: handler.NewOpportunityHandler(opportunityUC),
		Content:     handler.NewContentHandler(contentUC),
		ML:          handler.NewMLHandler(mlClient),
		Activity:    ws.NewHandler(hub, log),

		AuthGuard:     authGuard,
		APIRateLimit:  middleware.NewRateLimitMiddleware(redis, "api", cfg.RateLimit.APIMax, cfg.RateLimit.Window),
		AuthRateLimit: middleware.NewRateLimitMiddleware(redis, "auth", cfg.RateLimit.AuthMax, cfg.RateLimit.Window),
	}

	return &Container{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Mongo:     mongoStore,
		Redis:     redis,
		Hub:       hub,
		Registry:  registry,
		hubCancel: hubCancel,
	}, nil
}

func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.hubCancel != nil {
		c.hubCancel()
	}

	var first error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && first == nil {
			first = err
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
