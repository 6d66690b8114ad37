package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PBNPublisher/internal/domain"
	"PBNPublisher/internal/ports"
)

const (
	postsPath       = "/wp-json/wp/v2/posts"
	currentUserPath = "/wp-json/wp/v2/users/me"
	maxErrorBody    = 64 << 10
)

// Client talks to the WordPress REST API of any registered site.
type Client struct {
	http      *http.Client
	userAgent string
}

var _ ports.WordPressClient = (*Client)(nil)

// NewClient creates a reusable HTTP client with the given timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// NewClientWithHTTP wires a caller-provided http.Client (tests, proxies).
func NewClientWithHTTP(client *http.Client) *Client {
	return &Client{http: client}
}

// CreatePost publishes a post and returns its id and public link. A post the
// site created without reporting a permalink gets the ?p=<id> shortlink.
func (c *Client) CreatePost(ctx context.Context, creds domain.Credentials, post domain.Post) (domain.CreatedPost, error) {
	var created domain.CreatedPost
	if err := c.do(ctx, http.MethodPost, creds, postsPath, post, &created); err != nil {
		return domain.CreatedPost{}, err
	}
	if created.Link == "" {
		if created.ID == 0 {
			return domain.CreatedPost{}, &domain.RemoteError{Message: "response did not include a post id or link"}
		}
		created.Link = fmt.Sprintf("%s/?p=%d", strings.TrimRight(creds.URL, "/"), created.ID)
	}
	return created, nil
}

// CurrentUser resolves the authenticated user's display name.
func (c *Client) CurrentUser(ctx context.Context, creds domain.Credentials) (string, error) {
	var me struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.do(ctx, http.MethodGet, creds, currentUserPath, nil, &me); err != nil {
		return "", err
	}
	if me.ID == 0 && me.Name == "" {
		return "", &domain.RemoteError{Message: "response did not identify a user"}
	}
	return me.Name, nil
}

func (c *Client) do(ctx context.Context, method string, creds domain.Credentials, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &domain.RemoteError{Message: fmt.Sprintf("marshal payload: %v", err)}
		}
		body = bytes.NewReader(raw)
	}

	endpoint := strings.TrimRight(creds.URL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &domain.RemoteError{Message: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Authorization", basicAuth(creds.Username, creds.AppPassword))
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.RemoteError{Message: transportMessage(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.RemoteError{Status: resp.StatusCode, Message: errorMessage(resp, raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		// The request itself succeeded; for a create the post may exist.
		return &domain.RemoteError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("unreadable %s response, check the site before retrying: %v", resp.Status, err),
		}
	}
	return nil
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// errorMessage prefers the REST API's JSON message, then the text of an HTML
// error page, then the bare status line.
func errorMessage(resp *http.Response, raw []byte) string {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &apiErr) == nil && strings.TrimSpace(apiErr.Message) != "" {
		return strings.TrimSpace(apiErr.Message)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw)); err == nil {
			text := doc.Find(".wp-die-message").First().Text()
			if strings.TrimSpace(text) == "" {
				text = doc.Find("body").Text()
			}
			if text = strings.Join(strings.Fields(text), " "); text != "" {
				return truncate(text, 300)
			}
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 300 {
		return text
	}
	return resp.Status
}

func transportMessage(err error) string {
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "request timed out: " + err.Error()
	}
	return err.Error()
}

// truncate keeps at most n runes so multibyte text is never split.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
