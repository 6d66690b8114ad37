package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"PBNPublisher/internal/config"
	"PBNPublisher/internal/httpapi"
	"PBNPublisher/internal/infrastructure/parser"
	"PBNPublisher/internal/infrastructure/secrets"
	"PBNPublisher/internal/infrastructure/storage"
	"PBNPublisher/internal/infrastructure/telegram"
	"PBNPublisher/internal/infrastructure/wordpress"
	"PBNPublisher/internal/logging"
	"PBNPublisher/internal/ports"
	"PBNPublisher/internal/spinner"
	"PBNPublisher/internal/usecase"
)

// Application wires configs to use cases and owns their resources.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	store  *storage.Store

	Spinner   *spinner.Spinner
	Accounts  *usecase.Accounts
	Publisher *usecase.Publisher
	Ingestor  *usecase.Ingestor
	Websites  *usecase.Websites
	Dashboard *usecase.Dashboard
}

// New opens storage and builds every use case. Close releases the store.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	box, err := secrets.NewBox(cfg.Security.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("secret box: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Database, box)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	thesaurus := spinner.DefaultThesaurus()
	if path := cfg.Spinner.ThesaurusPath; path != "" {
		thesaurus, err = spinner.LoadThesaurus(path)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("load thesaurus: %w", err)
		}
		baseLogger.Info("thesaurus loaded", "path", path, "words", thesaurus.Len())
	}
	spin := spinner.New(thesaurus, nil)

	wp := wordpress.NewClient(cfg.WordPress.Timeout.Duration, cfg.WordPress.UserAgent)

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	downloader := parser.NewDownloader(
		&http.Client{Timeout: cfg.WordPress.Timeout.Duration},
		cfg.WordPress.UserAgent,
		cfg.HTTP.MaxUploadBytes,
	)

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		store:   store,
		Spinner: spin,
		Accounts: usecase.NewAccounts(store, store, cfg.Security.SessionTTL.Duration,
			baseLogger.With("component", "accounts")),
		Publisher: usecase.NewPublisher(usecase.PublisherDeps{
			Articles:    store,
			Websites:    store,
			Activity:    store,
			WordPress:   wp,
			Spinner:     spin,
			Notifier:    notifier,
			Logger:      baseLogger.With("component", "publisher"),
			MaxAttempts: cfg.Publish.MaxAttempts,
			StaleAfter:  cfg.Publish.StaleAfter.Duration,
		}),
		Ingestor: usecase.NewIngestor(usecase.IngestorDeps{
			Parser:     parser.NewDefaultSource(baseLogger.With("component", "source")),
			Downloader: downloader,
			Websites:   store,
			Batches:    store,
			Activity:   store,
			Logger:     baseLogger.With("component", "ingestor"),
		}),
		Websites:  usecase.NewWebsites(store, store, wp, baseLogger.With("component", "websites")),
		Dashboard: usecase.NewDashboard(store, store, store),
	}, nil
}

// Articles exposes article lookups for command-line tooling.
func (a *Application) Articles() ports.ArticleRepository {
	return a.store
}

// Run serves the HTTP API until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	server := httpapi.New(a.cfg.HTTP, httpapi.Deps{
		Accounts:  a.Accounts,
		Publisher: a.Publisher,
		Ingestor:  a.Ingestor,
		Websites:  a.Websites,
		Dashboard: a.Dashboard,
		Ping:      a.store.Ping,
	}, a.logger.With("component", "http"))
	return server.Run(ctx)
}

// Close releases the database connection.
func (a *Application) Close() error {
	return a.store.Close()
}
