package storage

import (
	"context"
	"fmt"

	"PBNPublisher/internal/domain"
)

// insertChunk keeps multi-row inserts under SQLite's bound-parameter limit.
const insertChunk = 500

// CreateBatch inserts the batch and all of its pending articles in one transaction.
func (s *Store) CreateBatch(ctx context.Context, batch domain.UploadBatch, rows []domain.NewArticle) (domain.UploadBatch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UploadBatch{}, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	if batch.Status == "" {
		batch.Status = domain.BatchCompleted
	}
	created := unixTime(s.now())

	batchID, err := insertReturningID(ctx, tx, s.sb.Insert("upload_batches").
		Columns("file_name", "file_size", "total_articles", "processed_articles", "status", "user_id", "created_at").
		Values(batch.FileName, batch.FileSize, batch.TotalArticles, batch.ProcessedArticles, string(batch.Status), batch.OwnerID, created))
	if err != nil {
		return domain.UploadBatch{}, fmt.Errorf("insert batch: %w", err)
	}

	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		insert := s.sb.Insert("articles").
			Columns("original_title", "original_content", "keywords", "status", "website_id", "batch_id", "publish_attempts", "created_at")
		for _, row := range rows[start:end] {
			var websiteID any
			if row.WebsiteID != nil {
				websiteID = *row.WebsiteID
			}
			insert = insert.Values(row.OriginalTitle, row.OriginalContent, row.Keywords, string(domain.StatusPending), websiteID, batchID, 0, created)
		}
		if _, err := execAffected(ctx, tx, insert); err != nil {
			return domain.UploadBatch{}, fmt.Errorf("insert articles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.UploadBatch{}, fmt.Errorf("commit batch: %w", err)
	}

	batch.ID = batchID
	batch.CreatedAt = fromUnix(created)
	return batch, nil
}
