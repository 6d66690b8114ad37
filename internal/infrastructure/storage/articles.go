package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"PBNPublisher/internal/domain"
)

var articleColumns = []string{
	"a.id", "a.original_title", "a.original_content", "a.spun_title", "a.spun_content",
	"a.keywords", "a.status", "a.website_id", "a.batch_id", "a.live_url", "a.published_at",
	"a.publish_attempts", "a.error_log", "a.publish_started_at", "a.created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		a                                      domain.Article
		status                                 string
		spunTitle, spunContent, live, errorLog sql.NullString
		websiteID, batchID                     sql.NullInt64
		publishedAt, startedAt                 sql.NullInt64
		createdAt                              int64
	)
	err := row.Scan(
		&a.ID, &a.OriginalTitle, &a.OriginalContent, &spunTitle, &spunContent,
		&a.Keywords, &status, &websiteID, &batchID, &live, &publishedAt,
		&a.PublishAttempts, &errorLog, &startedAt, &createdAt,
	)
	if err != nil {
		return domain.Article{}, err
	}
	a.Status = domain.ArticleStatus(status)
	a.SpunTitle = nullableString(spunTitle)
	a.SpunContent = nullableString(spunContent)
	a.WebsiteID = nullableInt(websiteID)
	a.BatchID = nullableInt(batchID)
	a.LiveLink = nullableString(live)
	a.PublishedAt = nullableTime(publishedAt)
	a.ErrorLog = nullableString(errorLog)
	a.PublishStartedAt = nullableTime(startedAt)
	a.CreatedAt = fromUnix(createdAt)
	return a, nil
}

// GetArticle fetches an article by identifier.
func (s *Store) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	query, args, err := s.sb.Select(articleColumns...).From("articles a").Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	article, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &article, nil
}

// ClaimForPublish performs the compare-and-swap into publishing.
func (s *Store) ClaimForPublish(ctx context.Context, id int64, staleBefore time.Time, maxAttempts int) (bool, error) {
	claimable := sq.Or{
		sq.Eq{"status": []string{string(domain.StatusPending), string(domain.StatusFailed)}},
		sq.And{
			sq.Eq{"status": string(domain.StatusPublishing)},
			sq.Lt{"publish_started_at": unixTime(staleBefore)},
		},
	}

	update := s.sb.Update("articles").
		Set("status", string(domain.StatusPublishing)).
		Set("publish_attempts", sq.Expr("publish_attempts + 1")).
		Set("publish_started_at", unixTime(s.now())).
		Where(sq.Eq{"id": id}).
		Where(claimable)
	if maxAttempts > 0 {
		update = update.Where(sq.Lt{"publish_attempts": maxAttempts})
	}

	n, err := execAffected(ctx, s.db, update)
	if err != nil {
		return false, fmt.Errorf("claim article %d: %w", id, err)
	}
	return n == 1, nil
}

// MarkPublished writes the success fields in one statement, guarded on the claim.
func (s *Store) MarkPublished(ctx context.Context, id int64, res domain.PublishSuccess) error {
	update := s.sb.Update("articles").SetMap(map[string]any{
		"spun_title":         res.SpunTitle,
		"spun_content":       res.SpunContent,
		"status":             string(domain.StatusPublished),
		"live_url":           res.LiveLink,
		"published_at":       unixTime(res.PublishedAt),
		"error_log":          nil,
		"publish_started_at": nil,
	}).Where(sq.Eq{"id": id, "status": string(domain.StatusPublishing)})

	n, err := execAffected(ctx, s.db, update)
	if err != nil {
		return fmt.Errorf("mark article %d published: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("mark article %d published: %w", id, domain.ErrConflict)
	}
	return nil
}

// MarkFailed writes the failure fields in one statement, guarded on the claim.
func (s *Store) MarkFailed(ctx context.Context, id int64, res domain.PublishFailure) error {
	update := s.sb.Update("articles").SetMap(map[string]any{
		"spun_title":         nullIfEmpty(res.SpunTitle),
		"spun_content":       nullIfEmpty(res.SpunContent),
		"status":             string(domain.StatusFailed),
		"error_log":          res.ErrorLog,
		"publish_started_at": nil,
	}).Where(sq.Eq{"id": id, "status": string(domain.StatusPublishing)})

	n, err := execAffected(ctx, s.db, update)
	if err != nil {
		return fmt.Errorf("mark article %d failed: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("mark article %d failed: %w", id, domain.ErrConflict)
	}
	return nil
}

// ListArticles returns the articles of the owner's batches, newest first.
func (s *Store) ListArticles(ctx context.Context, ownerID int64) ([]domain.Article, error) {
	builder := s.sb.Select(articleColumns...).
		From("articles a").
		Join("upload_batches b ON a.batch_id = b.id").
		Where(sq.Eq{"b.user_id": ownerID}).
		OrderBy("a.created_at DESC", "a.id DESC")
	return s.queryArticles(ctx, builder)
}

// ListPublished returns published articles on the owner's websites, newest publish first.
func (s *Store) ListPublished(ctx context.Context, ownerID int64, limit int) ([]domain.Article, error) {
	builder := s.sb.Select(articleColumns...).
		From("articles a").
		Join("websites w ON a.website_id = w.id").
		Where(sq.Eq{"w.user_id": ownerID, "a.status": string(domain.StatusPublished)}).
		OrderBy("a.published_at DESC", "a.id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	return s.queryArticles(ctx, builder)
}

// CountByStatus tallies articles on the owner's websites.
func (s *Store) CountByStatus(ctx context.Context, ownerID int64) (map[domain.ArticleStatus]int, error) {
	query, args, err := s.sb.Select("a.status", "COUNT(*)").
		From("articles a").
		Join("websites w ON a.website_id = w.id").
		Where(sq.Eq{"w.user_id": ownerID}).
		GroupBy("a.status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	defer rows.Close()

	counts := map[domain.ArticleStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.ArticleStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

func (s *Store) queryArticles(ctx context.Context, builder sq.SelectBuilder) ([]domain.Article, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}
