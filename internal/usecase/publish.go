package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/logging"
	"PBNPublisher/internal/markup"
	"PBNPublisher/internal/ports"
)

// OutcomeKind classifies the result of a publish request.
type OutcomeKind string

const (
	OutcomePublished         OutcomeKind = "published"
	OutcomeNotFound          OutcomeKind = "not_found"
	OutcomeAlreadyPublished  OutcomeKind = "already_published"
	OutcomeInProgress        OutcomeKind = "in_progress"
	OutcomeWebsiteInactive   OutcomeKind = "website_inactive"
	OutcomeAttemptsExhausted OutcomeKind = "attempts_exhausted"
	OutcomeRemoteFailure     OutcomeKind = "remote_failure"
	OutcomeInternal          OutcomeKind = "internal"
)

const (
	genericRemoteFailure = "Failed to publish to WordPress"
	genericInternal      = "Internal Server Error"
)

// PublishOutcome is what the orchestrator reports back to its caller.
type PublishOutcome struct {
	Kind    OutcomeKind `json:"kind"`
	Link    string      `json:"link,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK reports whether the article reached the published state.
func (o PublishOutcome) OK() bool {
	return o.Kind == OutcomePublished
}

// Err maps a failed outcome onto the domain sentinel for its kind, so callers
// outside HTTP can use errors.Is. It is nil for a published outcome.
func (o PublishOutcome) Err() error {
	var sentinel error
	switch o.Kind {
	case OutcomePublished:
		return nil
	case OutcomeNotFound:
		sentinel = domain.ErrNotFound
	case OutcomeAlreadyPublished:
		sentinel = domain.ErrAlreadyPublished
	case OutcomeInProgress:
		sentinel = domain.ErrPublishInProgress
	case OutcomeWebsiteInactive:
		sentinel = domain.ErrWebsiteInactive
	case OutcomeAttemptsExhausted:
		sentinel = domain.ErrAttemptsExhausted
	case OutcomeRemoteFailure:
		return &domain.RemoteError{Message: o.Message}
	default:
		return errors.New(o.Message)
	}
	return fmt.Errorf("%s: %w", o.Message, sentinel)
}

// PublisherDeps wires driven adapters into the publish orchestrator.
type PublisherDeps struct {
	Articles  ports.ArticleRepository
	Websites  ports.WebsiteRepository
	Activity  ports.ActivityRepository
	WordPress ports.WordPressClient
	Spinner   ports.Spinner
	Notifier  ports.Notifier
	Logger    *slog.Logger

	// MaxAttempts caps publish attempts per article; zero means unbounded.
	MaxAttempts int
	// StaleAfter is how long a publishing claim may sit before it can be taken over.
	StaleAfter time.Duration
	Now        func() time.Time
}

// Publisher drives a single article from pending to a terminal outcome.
type Publisher struct {
	articles    ports.ArticleRepository
	websites    ports.WebsiteRepository
	activity    ports.ActivityRepository
	wordpress   ports.WordPressClient
	spinner     ports.Spinner
	notifier    ports.Notifier
	logger      *slog.Logger
	maxAttempts int
	staleAfter  time.Duration
	now         func() time.Time
}

// NewPublisher constructs the orchestration component.
func NewPublisher(deps PublisherDeps) *Publisher {
	p := &Publisher{
		articles:    deps.Articles,
		websites:    deps.Websites,
		activity:    deps.Activity,
		wordpress:   deps.WordPress,
		spinner:     deps.Spinner,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		maxAttempts: deps.MaxAttempts,
		staleAfter:  deps.StaleAfter,
		now:         deps.Now,
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.staleAfter <= 0 {
		p.staleAfter = 10 * time.Minute
	}
	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	return p
}

// Publish spins, formats, and posts one article owned by userID. Every error
// is folded into the returned outcome.
func (p *Publisher) Publish(ctx context.Context, userID, articleID int64) PublishOutcome {
	log := p.logger.With("article_id", articleID, "user_id", userID)

	article, site, outcome, ok := p.load(ctx, log, userID, articleID)
	if !ok {
		return outcome
	}

	if outcome, ok := p.precheck(article, site); !ok {
		return outcome
	}

	claimed, err := p.articles.ClaimForPublish(ctx, article.ID, p.now().Add(-p.staleAfter), p.maxAttempts)
	if err != nil {
		return p.internal(log, "claim article", err)
	}
	if !claimed {
		return p.lostClaim(ctx, log, article.ID)
	}

	post, spunBody := p.render(article)
	created, err := p.wordpress.CreatePost(ctx, site.Credentials(), post)

	// The remote side may already hold the post; the outcome must be
	// recorded even if the caller has gone away, or a stale-claim takeover
	// would post it again.
	recordCtx := context.WithoutCancel(ctx)
	if err != nil {
		return p.recordFailure(recordCtx, log, article, site, post.Title, spunBody, err)
	}
	return p.recordSuccess(recordCtx, log, article, site, post.Title, spunBody, created.Link)
}

// Preview renders a fresh spin of the article as it would be posted, without
// claiming or persisting anything.
func (p *Publisher) Preview(ctx context.Context, userID, articleID int64) (domain.Post, error) {
	article, err := p.articles.GetArticle(ctx, articleID)
	if err != nil {
		return domain.Post{}, err
	}
	if article.WebsiteID == nil {
		return domain.Post{}, fmt.Errorf("article %d has no website: %w", articleID, domain.ErrNotFound)
	}
	site, err := p.websites.GetWebsite(ctx, *article.WebsiteID)
	if err != nil {
		return domain.Post{}, err
	}
	if site.OwnerID != userID {
		return domain.Post{}, fmt.Errorf("article %d: %w", articleID, domain.ErrNotFound)
	}
	post, _ := p.render(article)
	return post, nil
}

func (p *Publisher) render(article *domain.Article) (domain.Post, string) {
	spunTitle := p.spinner.Spin(article.OriginalTitle)
	spunBody := p.spinner.Spin(article.OriginalContent)
	return domain.Post{
		Title:   spunTitle,
		Content: markup.FormatForWordPress(spunTitle, spunBody, article.Keywords),
		Status:  "publish",
	}, spunBody
}

func (p *Publisher) load(ctx context.Context, log *slog.Logger, userID, articleID int64) (*domain.Article, *domain.Website, PublishOutcome, bool) {
	notFound := PublishOutcome{Kind: OutcomeNotFound, Message: "Article or Website not found"}

	article, err := p.articles.GetArticle(ctx, articleID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, notFound, false
	}
	if err != nil {
		return nil, nil, p.internal(log, "load article", err), false
	}
	if article.WebsiteID == nil {
		return nil, nil, notFound, false
	}

	site, err := p.websites.GetWebsite(ctx, *article.WebsiteID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, notFound, false
	}
	if err != nil {
		return nil, nil, p.internal(log, "load website", err), false
	}
	if site.OwnerID != userID {
		log.Warn("publish rejected: website owned by another user", "website_id", site.ID)
		return nil, nil, notFound, false
	}
	return article, site, PublishOutcome{}, true
}

func (p *Publisher) precheck(article *domain.Article, site *domain.Website) (PublishOutcome, bool) {
	switch {
	case article.Published():
		return PublishOutcome{Kind: OutcomeAlreadyPublished, Message: "Already published"}, false
	case site.Status == domain.WebsiteInactive:
		return PublishOutcome{Kind: OutcomeWebsiteInactive, Message: fmt.Sprintf("Website %s is inactive", site.Name)}, false
	case p.exhausted(article):
		return p.exhaustedOutcome(), false
	}
	return PublishOutcome{}, true
}

func (p *Publisher) exhausted(article *domain.Article) bool {
	return p.maxAttempts > 0 && article.PublishAttempts >= p.maxAttempts && article.Status != domain.StatusPublishing
}

func (p *Publisher) exhaustedOutcome() PublishOutcome {
	return PublishOutcome{
		Kind:    OutcomeAttemptsExhausted,
		Message: fmt.Sprintf("Publish attempts exhausted (%d)", p.maxAttempts),
	}
}

// lostClaim re-reads the article to explain why the claim did not apply.
func (p *Publisher) lostClaim(ctx context.Context, log *slog.Logger, articleID int64) PublishOutcome {
	current, err := p.articles.GetArticle(ctx, articleID)
	if err != nil {
		return p.internal(log, "reload article", err)
	}
	switch {
	case current.Published():
		return PublishOutcome{Kind: OutcomeAlreadyPublished, Message: "Already published"}
	case p.exhausted(current):
		return p.exhaustedOutcome()
	default:
		return PublishOutcome{Kind: OutcomeInProgress, Message: "Publish already in progress"}
	}
}

func (p *Publisher) recordFailure(ctx context.Context, log *slog.Logger, article *domain.Article, site *domain.Website, spunTitle, spunBody string, cause error) PublishOutcome {
	message := genericRemoteFailure
	var remote *domain.RemoteError
	if errors.As(cause, &remote) && remote.Message != "" {
		message = remote.Message
	}
	log.Warn("remote publish failed", "website_id", site.ID, "error", cause)

	err := p.articles.MarkFailed(ctx, article.ID, domain.PublishFailure{
		SpunTitle:   spunTitle,
		SpunContent: spunBody,
		ErrorLog:    message,
	})
	if err != nil {
		return p.internal(log, "record publish failure", err)
	}

	if remote != nil && remote.AuthFailure() && site.Status != domain.WebsiteError {
		p.setWebsiteStatus(ctx, log, site, domain.WebsiteError)
	}

	p.appendActivity(ctx, log, domain.ActivityLog{
		Type:    domain.ActivityPublishFailed,
		Message: fmt.Sprintf("Failed to publish: %s to %s", article.OriginalTitle, site.Name),
		Details: message,
		UserID:  site.OwnerID,
	})
	p.notify(ctx, log, fmt.Sprintf("Publish failed: %s on %s: %s", article.OriginalTitle, site.Name, message))

	return PublishOutcome{Kind: OutcomeRemoteFailure, Message: message}
}

func (p *Publisher) recordSuccess(ctx context.Context, log *slog.Logger, article *domain.Article, site *domain.Website, spunTitle, spunBody, link string) PublishOutcome {
	err := p.articles.MarkPublished(ctx, article.ID, domain.PublishSuccess{
		SpunTitle:   spunTitle,
		SpunContent: spunBody,
		LiveLink:    link,
		PublishedAt: p.now(),
	})
	if err != nil {
		outcome := p.internal(log, "record publish success", err)
		log.Error("post is live but not recorded", "link", link)
		return outcome
	}

	if site.Status == domain.WebsiteError {
		p.setWebsiteStatus(ctx, log, site, domain.WebsiteActive)
	}

	p.appendActivity(ctx, log, domain.ActivityLog{
		Type:    domain.ActivityPublish,
		Message: fmt.Sprintf("Successfully published: %s to %s", spunTitle, site.Name),
		Details: link,
		UserID:  site.OwnerID,
	})
	p.notify(ctx, log, fmt.Sprintf("Published: %s on %s\n%s", spunTitle, site.Name, link))

	log.Info("article published", "website_id", site.ID, "link", link)
	return PublishOutcome{Kind: OutcomePublished, Link: link}
}

func (p *Publisher) setWebsiteStatus(ctx context.Context, log *slog.Logger, site *domain.Website, status domain.WebsiteStatus) {
	if err := p.websites.SetWebsiteStatus(ctx, site.ID, status); err != nil {
		log.Error("update website status", "website_id", site.ID, "status", status, "error", err)
	}
}

func (p *Publisher) appendActivity(ctx context.Context, log *slog.Logger, entry domain.ActivityLog) {
	if p.activity == nil {
		return
	}
	if err := p.activity.AppendActivity(ctx, entry); err != nil {
		log.Error("append activity", "type", entry.Type, "error", err)
	}
}

func (p *Publisher) notify(ctx context.Context, log *slog.Logger, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, message); err != nil {
		log.Warn("notify", "error", err)
	}
}

func (p *Publisher) internal(log *slog.Logger, step string, err error) PublishOutcome {
	log.Error("publish failed", "step", step, "error", err)
	return PublishOutcome{Kind: OutcomeInternal, Message: genericInternal}
}
