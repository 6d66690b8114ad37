package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"PBNPublisher/internal/domain"
)

// AppendActivity records a dashboard activity entry.
func (s *Store) AppendActivity(ctx context.Context, entry domain.ActivityLog) error {
	query, args, err := s.sb.Insert("activity_logs").
		Columns("type", "message", "details", "user_id", "created_at").
		Values(string(entry.Type), entry.Message, nullIfEmpty(entry.Details), entry.UserID, unixTime(s.now())).
		ToSql()
	if err != nil {
		return fmt.Errorf("build activity insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivity returns the user's latest entries, newest first.
func (s *Store) RecentActivity(ctx context.Context, userID int64, limit int) ([]domain.ActivityLog, error) {
	builder := s.sb.Select("id", "type", "message", "details", "user_id", "created_at").
		From("activity_logs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build activity query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityLog, 0)
	for rows.Next() {
		var (
			entry     domain.ActivityLog
			kind      string
			details   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.Message, &details, &entry.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entry.Type = domain.ActivityType(kind)
		entry.Details = details.String
		entry.CreatedAt = fromUnix(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}
