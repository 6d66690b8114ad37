package ports

import (
	"context"
	"time"

	"PBNPublisher/internal/domain"
)

// ArticleRepository persists articles and guards their publish transitions.
type ArticleRepository interface {
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	// ClaimForPublish moves a pending, failed, or stale publishing article into
	// publishing and bumps its attempt counter. It reports false when another
	// caller holds the claim, the article is already published, or maxAttempts
	// (when positive) has been reached.
	ClaimForPublish(ctx context.Context, id int64, staleBefore time.Time, maxAttempts int) (bool, error)
	MarkPublished(ctx context.Context, id int64, res domain.PublishSuccess) error
	MarkFailed(ctx context.Context, id int64, res domain.PublishFailure) error
	ListArticles(ctx context.Context, ownerID int64) ([]domain.Article, error)
	ListPublished(ctx context.Context, ownerID int64, limit int) ([]domain.Article, error)
	CountByStatus(ctx context.Context, ownerID int64) (map[domain.ArticleStatus]int, error)
}

// BatchRepository stores a spreadsheet ingestion and its articles in one unit.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch domain.UploadBatch, rows []domain.NewArticle) (domain.UploadBatch, error)
}

// WebsiteRepository stores publish targets; passwords are opened on read.
type WebsiteRepository interface {
	CreateWebsite(ctx context.Context, site domain.Website) (domain.Website, error)
	GetWebsite(ctx context.Context, id int64) (*domain.Website, error)
	ListWebsites(ctx context.Context, ownerID int64) ([]domain.Website, error)
	DeleteWebsite(ctx context.Context, id, ownerID int64) error
	SetWebsiteStatus(ctx context.Context, id int64, status domain.WebsiteStatus) error
}

// UserRepository stores dashboard accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// SessionRepository stores login sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// ActivityRepository records dashboard activity.
type ActivityRepository interface {
	AppendActivity(ctx context.Context, entry domain.ActivityLog) error
	RecentActivity(ctx context.Context, userID int64, limit int) ([]domain.ActivityLog, error)
}

// WordPressClient talks to a site's REST API. Returned errors are *domain.RemoteError.
type WordPressClient interface {
	CreatePost(ctx context.Context, creds domain.Credentials, post domain.Post) (domain.CreatedPost, error)
	CurrentUser(ctx context.Context, creds domain.Credentials) (string, error)
}

// Spinner rewrites text with synonym substitutions.
type Spinner interface {
	Spin(text string) string
}

// SheetParser turns an uploaded workbook into rows.
type SheetParser interface {
	Parse(ctx context.Context, fileName string, data []byte) ([]domain.SheetRow, error)
}

// Downloader fetches a remote workbook.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// SecretBox seals secrets before they reach storage.
type SecretBox interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// Notifier streams publish outcomes to Telegram or other channels.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
