package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/logging"
	"PBNPublisher/internal/ports"
)

// WebsiteInput is the caller-supplied part of a website registration.
type WebsiteInput struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Username    string `json:"username"`
	AppPassword string `json:"password"`
}

// ConnectionTest names either a stored website or ad-hoc credentials.
type ConnectionTest struct {
	WebsiteID   int64  `json:"websiteId,omitempty"`
	URL         string `json:"url,omitempty"`
	Username    string `json:"username,omitempty"`
	AppPassword string `json:"password,omitempty"`
}

// Websites manages the caller's publish targets.
type Websites struct {
	repo      ports.WebsiteRepository
	activity  ports.ActivityRepository
	wordpress ports.WordPressClient
	logger    *slog.Logger
}

// NewWebsites wires the website management use case.
func NewWebsites(repo ports.WebsiteRepository, activity ports.ActivityRepository, wp ports.WordPressClient, logger *slog.Logger) *Websites {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Websites{repo: repo, activity: activity, wordpress: wp, logger: logger}
}

// Create registers a website for userID.
func (w *Websites) Create(ctx context.Context, userID int64, in WebsiteInput) (domain.Website, error) {
	name := strings.TrimSpace(in.Name)
	username := strings.TrimSpace(in.Username)
	if name == "" || in.URL == "" || username == "" || in.AppPassword == "" {
		return domain.Website{}, fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}
	siteURL, err := domain.NormalizeSiteURL(in.URL)
	if err != nil {
		return domain.Website{}, err
	}

	site, err := w.repo.CreateWebsite(ctx, domain.Website{
		Name:        name,
		URL:         siteURL,
		Username:    username,
		AppPassword: in.AppPassword,
		Status:      domain.WebsiteActive,
		OwnerID:     userID,
	})
	if err != nil {
		return domain.Website{}, fmt.Errorf("create website: %w", err)
	}
	site.AppPassword = ""

	w.record(ctx, domain.ActivityLog{
		Type:    domain.ActivityWebsiteAdd,
		Message: fmt.Sprintf("Added new website: %s", name),
		UserID:  userID,
	})
	return site, nil
}

// List returns the caller's websites, newest first.
func (w *Websites) List(ctx context.Context, userID int64) ([]domain.Website, error) {
	sites, err := w.repo.ListWebsites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	return sites, nil
}

// Delete removes one of the caller's websites.
func (w *Websites) Delete(ctx context.Context, userID, websiteID int64) error {
	if err := w.repo.DeleteWebsite(ctx, websiteID, userID); err != nil {
		return err
	}
	w.record(ctx, domain.ActivityLog{
		Type:    domain.ActivityWebsiteDelete,
		Message: fmt.Sprintf("Deleted website #%d", websiteID),
		UserID:  userID,
	})
	return nil
}

// TestConnection checks the credentials against the site's REST API and
// returns the authenticated user's display name. Testing a stored website
// also refreshes its status.
func (w *Websites) TestConnection(ctx context.Context, userID int64, in ConnectionTest) (string, error) {
	var (
		creds domain.Credentials
		site  *domain.Website
	)
	if in.WebsiteID != 0 {
		stored, err := w.repo.GetWebsite(ctx, in.WebsiteID)
		if err != nil {
			return "", err
		}
		if stored.OwnerID != userID {
			return "", fmt.Errorf("website %d: %w", in.WebsiteID, domain.ErrNotFound)
		}
		site = stored
		creds = stored.Credentials()
	} else {
		if in.URL == "" || in.Username == "" || in.AppPassword == "" {
			return "", fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
		}
		siteURL, err := domain.NormalizeSiteURL(in.URL)
		if err != nil {
			return "", err
		}
		creds = domain.Credentials{URL: siteURL, Username: strings.TrimSpace(in.Username), AppPassword: in.AppPassword}
	}

	name, err := w.wordpress.CurrentUser(ctx, creds)
	if site != nil && site.Status != domain.WebsiteInactive {
		w.refreshStatus(ctx, site, err)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (w *Websites) refreshStatus(ctx context.Context, site *domain.Website, testErr error) {
	next := site.Status
	var remote *domain.RemoteError
	switch {
	case testErr == nil:
		next = domain.WebsiteActive
	case errors.As(testErr, &remote) && remote.AuthFailure():
		next = domain.WebsiteError
	}
	if next == site.Status {
		return
	}
	if err := w.repo.SetWebsiteStatus(ctx, site.ID, next); err != nil {
		w.logger.Error("update website status", "website_id", site.ID, "error", err)
	}
}

func (w *Websites) record(ctx context.Context, entry domain.ActivityLog) {
	if w.activity == nil {
		return
	}
	if err := w.activity.AppendActivity(ctx, entry); err != nil {
		w.logger.Error("append activity", "type", entry.Type, "error", err)
	}
}
