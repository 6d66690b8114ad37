package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/logging"
	"PBNPublisher/internal/matcher"
	"PBNPublisher/internal/ports"
)

const untitled = "Untitled"

// Upload is a workbook received from the caller.
type Upload struct {
	FileName string
	Size     int64
	Data     []byte
}

// IngestResult summarises a stored batch.
type IngestResult struct {
	Batch    domain.UploadBatch `json:"batch"`
	Articles int                `json:"articles"`
	Matched  int                `json:"matched"`
}

// IngestorDeps wires the adapters used by spreadsheet ingestion.
type IngestorDeps struct {
	Parser     ports.SheetParser
	Downloader ports.Downloader
	Websites   ports.WebsiteRepository
	Batches    ports.BatchRepository
	Activity   ports.ActivityRepository
	Logger     *slog.Logger
}

// Ingestor turns uploaded spreadsheets into pending articles.
type Ingestor struct {
	parser     ports.SheetParser
	downloader ports.Downloader
	websites   ports.WebsiteRepository
	batches    ports.BatchRepository
	activity   ports.ActivityRepository
	logger     *slog.Logger
}

// NewIngestor constructs the ingestion use case.
func NewIngestor(deps IngestorDeps) *Ingestor {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Ingestor{
		parser:     deps.Parser,
		downloader: deps.Downloader,
		websites:   deps.Websites,
		batches:    deps.Batches,
		activity:   deps.Activity,
		logger:     logger,
	}
}

// Ingest parses the workbook, matches each row to one of the caller's
// websites, and stores the batch with its pending articles.
func (i *Ingestor) Ingest(ctx context.Context, userID int64, upload Upload) (IngestResult, error) {
	name := filepath.Base(strings.TrimSpace(upload.FileName))
	if name == "" || name == "." || name == "/" {
		return IngestResult{}, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if len(upload.Data) == 0 {
		return IngestResult{}, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput)
	}
	if upload.Size <= 0 {
		upload.Size = int64(len(upload.Data))
	}

	rows, err := i.parser.Parse(ctx, name, upload.Data)
	if err != nil {
		return IngestResult{}, fmt.Errorf("parse %s: %w", name, err)
	}

	sites, err := i.websites.ListWebsites(ctx, userID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load websites: %w", err)
	}

	articles, matched := buildArticles(rows, sites)

	batch, err := i.batches.CreateBatch(ctx, domain.UploadBatch{
		FileName:          name,
		FileSize:          upload.Size,
		TotalArticles:     len(rows),
		ProcessedArticles: len(rows),
		Status:            domain.BatchCompleted,
		OwnerID:           userID,
	}, articles)
	if err != nil {
		return IngestResult{}, fmt.Errorf("store batch: %w", err)
	}

	if i.activity != nil {
		entry := domain.ActivityLog{
			Type:    domain.ActivityUpload,
			Message: fmt.Sprintf("Uploaded batch: %s (%d articles)", name, len(rows)),
			UserID:  userID,
		}
		if err := i.activity.AppendActivity(ctx, entry); err != nil {
			i.logger.Error("append activity", "batch_id", batch.ID, "error", err)
		}
	}

	i.logger.Info("batch ingested", "user_id", userID, "batch_id", batch.ID, "articles", len(rows), "matched", matched)
	return IngestResult{Batch: batch, Articles: len(rows), Matched: matched}, nil
}

// IngestURL downloads a remotely hosted workbook and ingests it. An empty
// name falls back to the last path segment of rawURL.
func (i *Ingestor) IngestURL(ctx context.Context, userID int64, rawURL, name string, size int64) (IngestResult, error) {
	if i.downloader == nil {
		return IngestResult{}, fmt.Errorf("workbook downloads are not configured")
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return IngestResult{}, fmt.Errorf("%w: invalid workbook url %q", domain.ErrInvalidInput, rawURL)
	}
	if strings.TrimSpace(name) == "" {
		name = path.Base(parsed.Path)
	}

	data, err := i.downloader.Download(ctx, parsed.String())
	if err != nil {
		return IngestResult{}, fmt.Errorf("download workbook: %w", err)
	}
	return i.Ingest(ctx, userID, Upload{FileName: name, Size: size, Data: data})
}

func buildArticles(rows []domain.SheetRow, sites []domain.Website) ([]domain.NewArticle, int) {
	articles := make([]domain.NewArticle, 0, len(rows))
	matched := 0
	for _, row := range rows {
		article := domain.NewArticle{
			OriginalTitle:   row.Title,
			OriginalContent: row.Content,
			Keywords:        row.Keywords,
		}
		if strings.TrimSpace(article.OriginalTitle) == "" {
			article.OriginalTitle = untitled
		}
		if site, ok := matcher.Match(row.Website, sites); ok {
			id := site.ID
			article.WebsiteID = &id
			matched++
		}
		articles = append(articles, article)
	}
	return articles, matched
}
