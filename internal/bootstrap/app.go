package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobtailor/internal/analyses"
	"jobtailor/internal/documents"
	"jobtailor/internal/export"
	"jobtailor/internal/llm"
	"jobtailor/internal/llm/gemini"
	"jobtailor/internal/llm/openai"
	"jobtailor/internal/persist"
	"jobtailor/internal/services/health"
	"jobtailor/internal/shared/config"
	"jobtailor/internal/shared/server"
	"jobtailor/internal/shared/server/middleware"
	"jobtailor/internal/shared/storage/db"
	"jobtailor/internal/shared/storage/object"
	localstore "jobtailor/internal/shared/storage/object/local"
	s3store "jobtailor/internal/shared/storage/object/s3"
	"jobtailor/internal/tailoring"
	"jobtailor/internal/wizard"
)

const sessionSweepInterval = 5 * time.Minute

// App holds shared dependencies and the wired router.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Store       object.ObjectStore
	Backend     persist.Backend
	Persist     *persist.Store
	LLM         llm.Client
	Importer    *documents.Importer
	Analysis    *analyses.Service
	Tailoring   *tailoring.Service
	Exporter    *export.Engine
	Sessions    *wizard.Sessions
	Handler     *wizard.Handler
	RateLimiter *middleware.RateLimiter
}

// Option overrides a dependency Build would otherwise construct.
type Option func(*options)

type options struct {
	llm   llm.Client
	sleep func(time.Duration)
}

// WithLLM replaces the configured model provider.
func WithLLM(c llm.Client) Option {
	return func(o *options) { o.llm = c }
}

// WithSleep replaces the wait used by the simulated payment.
func WithSleep(fn func(time.Duration)) Option {
	return func(o *options) { o.sleep = fn }
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil && cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := o.llm
	if client == nil {
		client, err = NewLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Store:       store,
		LLM:         client,
		RateLimiter: middleware.NewRateLimiter(nil),
	}
	if sqlDB != nil {
		app.Backend = &persist.PGBackend{DB: sqlDB}
	} else {
		app.Backend = persist.NewMemoryBackend()
	}
	app.Persist = persist.NewStore(app.Backend)

	app.Importer = documents.NewImporter(store)
	app.Analysis = &analyses.Service{LLM: llm.WithRetry(client), Model: cfg.AnalysisModel}
	app.Tailoring = &tailoring.Service{LLM: client, Model: cfg.TailoringModel}
	app.Exporter = buildExporter(cfg)

	app.Sessions = wizard.NewSessions(app.Persist, wizard.Deps{
		Importer:     app.Importer,
		Analyzer:     app.Analysis,
		Tailorer:     app.Tailoring,
		PaymentDelay: cfg.PaymentDelay,
		Sleep:        o.sleep,
	})
	app.Handler = wizard.NewHandler(app.Sessions, app.Exporter)

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		Handlers:    []server.RouteRegistrar{app.Handler},
		RateLimiter: app.RateLimiter,
		Health:      health.NewService(pinger, app.Sessions.Len),
	})

	return app, nil
}

// StartBackground launches the idle session sweeper. It stops with ctx.
func (a *App) StartBackground(ctx context.Context) {
	maxIdle := a.Config.SessionMaxIdle
	if maxIdle <= 0 {
		return
	}
	go a.Sessions.RunJanitor(ctx, sessionSweepInterval, maxIdle)
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory session store")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB   *sql.DB
		err     error
		profile = db.RuntimeProfile()
	)
	if profile == db.ProfileLambda {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory session store: %v", err)
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
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "none":
		return nil, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// NewLLM returns the model client selected by LLM_PROVIDER. Without a Gemini
// key in dev it falls back to the placeholder, which fails every call.
func NewLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, openai.WithTimeout(cfg.LLMTimeout))
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: GEMINI_API_KEY empty; analysis and tailoring are disabled")
				return llm.PlaceholderClient{}, nil
			}
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildExporter(cfg config.Config) *export.Engine {
	if cfg.PDFRenderer == "chromedp" {
		return export.NewEngine(export.NewChromeRenderer())
	}
	return export.NewEngine(nil)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
