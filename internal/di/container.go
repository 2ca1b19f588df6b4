package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sheetqa/internal/adapter/rag_http"
	"sheetqa/internal/adapter/rag_openai"
	"sheetqa/internal/adapter/repository"
	"sheetqa/internal/adapter/sheets"
	"sheetqa/internal/domain"
	"sheetqa/internal/infra"
	"sheetqa/internal/infra/config"
	"sheetqa/internal/infra/httpclient"
	"sheetqa/internal/infra/metrics"
	"sheetqa/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Snapshot *domain.DocumentSnapshot

	// Usecases
	RankUsecase   usecase.RankDocumentsUsecase
	AnswerUsecase usecase.AnswerQuestionUsecase

	Handler *rag_http.Handler

	closers []func()
}

// NewApplicationComponents wires every dependency and loads the document
// snapshot. It blocks until the load finishes; a load failure wraps
// domain.ErrStoreLoad.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	app := &ApplicationComponents{}
	recorder := metrics.NewRecorder()

	promptTemplate, err := usecase.LoadPromptTemplate(cfg.RAG.PromptTemplateFile)
	if err != nil {
		return nil, err
	}

	// Shared HTTP client with connection pooling
	openaiHTTP := httpclient.NewPooledClient(cfg.OpenAI.Timeout)
	openaiClient := rag_openai.NewClient(rag_openai.ClientConfig{
		BaseURL:    cfg.OpenAI.BaseURL,
		APIKey:     cfg.OpenAI.APIKey,
		MaxRetries: cfg.OpenAI.MaxRetries,
		HTTPClient: openaiHTTP,
	})
	embedder := rag_openai.NewEmbedder(openaiClient, cfg.OpenAI.EmbeddingModel, log)
	completer := rag_openai.NewCompleter(openaiClient, cfg.OpenAI.CompletionModel, log)

	source, err := app.newRowSource(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreLoad, err)
	}

	loadUsecase := usecase.NewLoadDocumentsUsecase(source, embedder, usecase.LoadDocumentsConfig{
		Concurrency:   cfg.Load.Concurrency,
		RatePerSecond: cfg.Load.RatePerSecond,
		Burst:         cfg.Load.Burst,
	}, recorder, log)
	snapshot, err := loadUsecase.Execute(ctx)
	// Row sources are only read once.
	app.Close()
	if err != nil {
		return nil, err
	}
	app.Snapshot = snapshot

	questionEncoder := usecase.NewCachedVectorEncoder(
		embedder,
		cfg.Cache.Size,
		time.Duration(cfg.Cache.TTL)*time.Minute,
		recorder,
	)
	app.RankUsecase = usecase.NewRankDocumentsUsecase(questionEncoder)
	app.AnswerUsecase = usecase.NewAnswerQuestionUsecase(
		snapshot,
		app.RankUsecase,
		usecase.NewPromptBuilder(promptTemplate),
		completer,
		usecase.AnswerConfig{
			WordBudget: cfg.RAG.WordBudget,
			Completion: domain.CompletionOptions{
				Temperature:      cfg.RAG.Temperature,
				MaxTokens:        cfg.RAG.MaxTokens,
				TopP:             cfg.RAG.TopP,
				FrequencyPenalty: cfg.RAG.FrequencyPenalty,
				PresencePenalty:  cfg.RAG.PresencePenalty,
			},
		},
		recorder,
		log,
	)
	app.Handler = rag_http.NewHandler(app.AnswerUsecase, snapshot, cfg.RAG.StrictErrors, log)

	log.Info("application_wired",
		slog.String("source", source.Name()),
		slog.String("embedding_model", embedder.Version()),
		slog.String("completion_model", completer.Version()),
		slog.Int("word_budget", cfg.RAG.WordBudget),
		slog.Int("cache_size", cfg.Cache.Size),
		slog.Bool("strict_errors", cfg.RAG.StrictErrors),
	)
	return app, nil
}

func (a *ApplicationComponents) newRowSource(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.RowSource, error) {
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		pool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return repository.NewPostgresRowSource(pool, cfg.Source.Table, cfg.Source.OrderColumn), nil

	case config.SourceSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.Source.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := db.Close(); err != nil {
				log.Warn("sqlite_close_failed", slog.String("error", err.Error()))
			}
		})
		return repository.NewSQLiteRowSource(db, cfg.Source.Table, cfg.Source.OrderColumn), nil

	case config.SourceSheets:
		sheetsCfg := sheets.Config{
			SpreadsheetID:   cfg.Source.SpreadsheetID,
			SheetName:       cfg.Source.SheetName,
			HeaderRows:      cfg.Source.HeaderRows,
			APIKey:          cfg.Source.SheetsAPIKey,
			CredentialsFile: cfg.Source.SheetsCredentialsFile,
			Endpoint:        cfg.Source.SheetsEndpoint,
			Timeout:         cfg.Source.SheetsTimeout,
		}
		srv, err := sheets.NewService(ctx, sheetsCfg)
		if err != nil {
			return nil, err
		}
		return sheets.NewRowSource(srv, sheetsCfg), nil

	default:
		return nil, fmt.Errorf("unknown document source %q", cfg.Source.Kind)
	}
}

// Close releases connections held for loading. It is safe to call more than once.
func (a *ApplicationComponents) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
