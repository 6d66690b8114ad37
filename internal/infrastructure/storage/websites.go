package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"PBNPublisher/internal/domain"
)

// CreateWebsite seals the app password and inserts the site.
func (s *Store) CreateWebsite(ctx context.Context, site domain.Website) (domain.Website, error) {
	sealed, err := s.box.Seal(site.AppPassword)
	if err != nil {
		return domain.Website{}, fmt.Errorf("seal website password: %w", err)
	}
	if site.Status == "" {
		site.Status = domain.WebsiteActive
	}
	site.CreatedAt = s.now()

	id, err := insertReturningID(ctx, s.db, s.sb.Insert("websites").
		Columns("name", "url", "username", "password", "status", "user_id", "created_at").
		Values(site.Name, site.URL, site.Username, sealed, string(site.Status), site.OwnerID, unixTime(site.CreatedAt)))
	if err != nil {
		return domain.Website{}, fmt.Errorf("insert website: %w", err)
	}
	site.ID = id
	site.CreatedAt = fromUnix(unixTime(site.CreatedAt))
	return site, nil
}

// GetWebsite fetches a site with its app password opened.
func (s *Store) GetWebsite(ctx context.Context, id int64) (*domain.Website, error) {
	query, args, err := s.sb.Select("id", "name", "url", "username", "password", "status", "user_id", "created_at").
		From("websites").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build website query: %w", err)
	}

	var (
		site      domain.Website
		sealed    string
		status    string
		createdAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&site.ID, &site.Name, &site.URL, &site.Username, &sealed, &status, &site.OwnerID, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("website %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get website: %w", err)
	}

	site.AppPassword, err = s.box.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("open website %d password: %w", id, err)
	}
	site.Status = domain.WebsiteStatus(status)
	site.CreatedAt = fromUnix(createdAt)
	return &site, nil
}

// ListWebsites returns the owner's sites, newest first, without passwords.
func (s *Store) ListWebsites(ctx context.Context, ownerID int64) ([]domain.Website, error) {
	query, args, err := s.sb.Select("id", "name", "url", "username", "status", "user_id", "created_at").
		From("websites").
		Where(sq.Eq{"user_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build websites query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query websites: %w", err)
	}
	defer rows.Close()

	sites := make([]domain.Website, 0)
	for rows.Next() {
		var (
			site      domain.Website
			status    string
			createdAt int64
		)
		if err := rows.Scan(&site.ID, &site.Name, &site.URL, &site.Username, &status, &site.OwnerID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		site.Status = domain.WebsiteStatus(status)
		site.CreatedAt = fromUnix(createdAt)
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return sites, nil
}

// DeleteWebsite removes a site owned by ownerID.
func (s *Store) DeleteWebsite(ctx context.Context, id, ownerID int64) error {
	n, err := execAffected(ctx, s.db, s.sb.Delete("websites").Where(sq.Eq{"id": id, "user_id": ownerID}))
	if err != nil {
		return fmt.Errorf("delete website %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("website %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetWebsiteStatus flips a site's health status.
func (s *Store) SetWebsiteStatus(ctx context.Context, id int64, status domain.WebsiteStatus) error {
	n, err := execAffected(ctx, s.db, s.sb.Update("websites").Set("status", string(status)).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("set website %d status: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("website %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
