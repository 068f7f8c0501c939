package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/advisor"
	"pathfinder-backend/internal/colleges"
	"pathfinder-backend/internal/geo"
	"pathfinder-backend/internal/llm"
	"pathfinder-backend/internal/llm/gemini"
	"pathfinder-backend/internal/llm/openai"
	"pathfinder-backend/internal/queue"
	"pathfinder-backend/internal/services/health"
	"pathfinder-backend/internal/shared/config"
	"pathfinder-backend/internal/shared/server"
	"pathfinder-backend/internal/shared/storage/db"
	"pathfinder-backend/internal/shared/storage/object"
	localstore "pathfinder-backend/internal/shared/storage/object/local"
	s3store "pathfinder-backend/internal/shared/storage/object/s3"
	"pathfinder-backend/internal/shared/telemetry"
	"pathfinder-backend/internal/workerproc"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Queue     queue.Client
	Generator llm.TextGenerator
	Colleges  *colleges.Controller
	Advisor   *advisor.Service
	CollegesH *colleges.Handler
	AdvisorH  *advisor.Handler
	MentorLog workerproc.RequestLog
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()
	app, err := BuildServices(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app.CollegesH = colleges.NewHandler(app.Colleges)
	app.AdvisorH = advisor.NewHandler(app.Advisor, server.GenerateRateLimit(cfg.GenerateRatePerMin))
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Health:   health.NewService(app.DB, cfg.LLMProvider),
		Colleges: app.CollegesH,
		Advisor:  app.AdvisorH,
	})
	return app, nil
}

// BuildServices prepares the controllers without an HTTP router; the CLI uses it directly.
func BuildServices(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}
	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctrl, err := buildColleges(cfg)
	if err != nil {
		return nil, err
	}

	var roadmaps advisor.RoadmapRepo = advisor.NewMemoryRoadmapRepo()
	var mentorLog workerproc.RequestLog = workerproc.NewMemoryLog()
	if sqlDB != nil {
		roadmaps = &advisor.PGRoadmapRepo{DB: sqlDB}
		mentorLog = &workerproc.PGLog{DB: sqlDB}
	}

	return &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Queue:     queueClient,
		Generator: generator,
		Colleges:  ctrl,
		MentorLog: mentorLog,
		Advisor: &advisor.Service{
			Generator: generator,
			Sessions:  advisor.NewMemorySessionRepo(cfg.SessionIdleTTL),
			Roadmaps:  roadmaps,
			Store:     store,
			Queue:     queueClient,
		},
	}, nil
}

func buildColleges(cfg config.Config) (*colleges.Controller, error) {
	client, err := colleges.NewClient(cfg.CollegesAPIBase, cfg.UpstreamTimeout)
	if err != nil {
		return nil, err
	}
	var geocoder geo.ReverseGeocoder
	if strings.TrimSpace(cfg.GeocoderBaseURL) != "" {
		gc, err := geo.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		geocoder = gc
	}
	return &colleges.Controller{
		Source:   colleges.NewCachedSource(client, cfg.ReferenceCacheTTL),
		Geocoder: geocoder,
		Fallback: colleges.DefaultFallback(),
		Sessions: colleges.NewMemoryRepo(cfg.SessionIdleTTL),
		PageSize: cfg.SearchPageSize,
		Default:  geo.Locality{State: cfg.DefaultState, City: cfg.DefaultCity},
	}, nil
}

func buildGenerator(ctx context.Context, cfg config.Config) (llm.TextGenerator, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return degradedGenerator(cfg, "GEMINI_API_KEY empty")
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return degradedGenerator(cfg, "OPENAI_API_KEY empty")
		}
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		telemetry.Warn("bootstrap.llm.disabled", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
}

func degradedGenerator(cfg config.Config, reason string) (llm.TextGenerator, error) {
	if !isDevLike(cfg.Env) {
		return nil, fmt.Errorf("LLM_PROVIDER=%s: %s", cfg.LLMProvider, reason)
	}
	telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": cfg.LLMProvider, "reason": reason})
	return llm.PlaceholderClient{}, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.MentorQueueURL) == "" {
		return queue.NewMemoryClient(), nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.MentorQueueURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
