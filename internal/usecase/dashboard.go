package usecase

import (
	"context"
	"fmt"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/ports"
)

const recentLimit = 5

// Dashboard assembles the read-only views of the caller's work.
type Dashboard struct {
	articles ports.ArticleRepository
	websites ports.WebsiteRepository
	activity ports.ActivityRepository
}

// NewDashboard wires the dashboard queries.
func NewDashboard(articles ports.ArticleRepository, websites ports.WebsiteRepository, activity ports.ActivityRepository) *Dashboard {
	return &Dashboard{articles: articles, websites: websites, activity: activity}
}

// Stats counts the caller's websites and articles and lists recent events.
func (d *Dashboard) Stats(ctx context.Context, userID int64) (domain.DashboardStats, error) {
	sites, err := d.websites.ListWebsites(ctx, userID)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("list websites: %w", err)
	}

	counts, err := d.articles.CountByStatus(ctx, userID)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count articles: %w", err)
	}

	recent, err := d.activity.RecentActivity(ctx, userID, recentLimit)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("recent activity: %w", err)
	}

	links, err := d.articles.ListPublished(ctx, userID, recentLimit)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("recent links: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return domain.DashboardStats{
		WebsiteCount:   len(sites),
		TotalArticles:  total,
		Published:      counts[domain.StatusPublished],
		Pending:        counts[domain.StatusPending],
		Failed:         counts[domain.StatusFailed],
		RecentActivity: recent,
		RecentLinks:    links,
	}, nil
}

// Articles lists the articles of the caller's batches, newest first.
func (d *Dashboard) Articles(ctx context.Context, userID int64) ([]domain.Article, error) {
	articles, err := d.articles.ListArticles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// LiveLinks lists published articles on the caller's websites, newest first.
func (d *Dashboard) LiveLinks(ctx context.Context, userID int64) ([]domain.Article, error) {
	links, err := d.articles.ListPublished(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list live links: %w", err)
	}
	return links, nil
}
