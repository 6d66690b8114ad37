package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// WebsiteStatus reflects whether a site accepts publish requests.
type WebsiteStatus string

const (
	WebsiteActive   WebsiteStatus = "active"
	WebsiteInactive WebsiteStatus = "inactive"
	WebsiteError    WebsiteStatus = "error"
)

// Website is a WordPress publish target owned by a user.
type Website struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Username    string        `json:"username"`
	AppPassword string        `json:"-"`
	Status      WebsiteStatus `json:"status"`
	OwnerID     int64         `json:"ownerId"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Credentials extracts what the remote client needs to authenticate.
func (w Website) Credentials() Credentials {
	return Credentials{URL: w.URL, Username: w.Username, AppPassword: w.AppPassword}
}

// Credentials authenticate against a WordPress REST API.
type Credentials struct {
	URL         string
	Username    string
	AppPassword string
}

// NormalizeSiteURL validates an http(s) origin and trims trailing slashes.
func NormalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q", ErrInvalidInput, raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: url must use http or https", ErrInvalidInput)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: url has no host", ErrInvalidInput)
	}
	return strings.TrimRight(raw, "/"), nil
}

// User is an authenticated dashboard account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session binds an opaque token to a user until it expires.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
