package domain

import "time"

// ArticleStatus enumerates publish pipeline milestones.
type ArticleStatus string

const (
	StatusPending    ArticleStatus = "pending"
	StatusPublishing ArticleStatus = "publishing"
	StatusPublished  ArticleStatus = "published"
	StatusFailed     ArticleStatus = "failed"
)

// Article is a unit of content work produced by a spreadsheet upload.
type Article struct {
	ID               int64         `json:"id"`
	OriginalTitle    string        `json:"originalTitle"`
	OriginalContent  string        `json:"originalContent"`
	SpunTitle        *string       `json:"spunTitle,omitempty"`
	SpunContent      *string       `json:"spunContent,omitempty"`
	Keywords         string        `json:"keywords"`
	Status           ArticleStatus `json:"status"`
	WebsiteID        *int64        `json:"websiteId,omitempty"`
	BatchID          *int64        `json:"batchId,omitempty"`
	LiveLink         *string       `json:"liveLink,omitempty"`
	PublishedAt      *time.Time    `json:"publishedAt,omitempty"`
	PublishAttempts  int           `json:"publishAttempts"`
	ErrorLog         *string       `json:"errorLog,omitempty"`
	PublishStartedAt *time.Time    `json:"-"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Published reports whether the article reached its terminal success state.
func (a Article) Published() bool {
	return a.Status == StatusPublished
}

// NewArticle is the ingestion payload for one spreadsheet row.
type NewArticle struct {
	OriginalTitle   string
	OriginalContent string
	Keywords        string
	WebsiteID       *int64
}

// PublishSuccess carries the fields written atomically when a remote post is created.
type PublishSuccess struct {
	SpunTitle   string
	SpunContent string
	LiveLink    string
	PublishedAt time.Time
}

// PublishFailure carries the fields written atomically when a remote post fails.
type PublishFailure struct {
	SpunTitle   string
	SpunContent string
	ErrorLog    string
}

// BatchStatus tracks a spreadsheet ingestion.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// UploadBatch records one spreadsheet ingestion event.
type UploadBatch struct {
	ID                int64       `json:"id"`
	FileName          string      `json:"fileName"`
	FileSize          int64       `json:"fileSize"`
	TotalArticles     int         `json:"totalArticles"`
	ProcessedArticles int         `json:"processedArticles"`
	Status            BatchStatus `json:"status"`
	OwnerID           int64       `json:"ownerId"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// ActivityType labels activity log entries.
type ActivityType string

const (
	ActivityUpload        ActivityType = "upload"
	ActivityPublish       ActivityType = "publish"
	ActivityPublishFailed ActivityType = "publish_failed"
	ActivityWebsiteAdd    ActivityType = "website_add"
	ActivityWebsiteDelete ActivityType = "website_delete"
)

// ActivityLog is an append-only audit entry shown on the dashboard.
type ActivityLog struct {
	ID        int64        `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Details   string       `json:"details,omitempty"`
	UserID    int64        `json:"userId"`
	CreatedAt time.Time    `json:"createdAt"`
}

// DashboardStats aggregates the caller's publishing state.
type DashboardStats struct {
	WebsiteCount   int           `json:"websiteCount"`
	TotalArticles  int           `json:"totalArticles"`
	Published      int           `json:"published"`
	Pending        int           `json:"pending"`
	Failed         int           `json:"failed"`
	RecentActivity []ActivityLog `json:"recentActivity"`
	RecentLinks    []Article     `json:"recentLinks"`
}
