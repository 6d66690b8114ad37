package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PBNPublisher/internal/domain"
)

// memStore is an in-memory stand-in for the storage adapter.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	articles  map[int64]*domain.Article
	websites  map[int64]*domain.Website
	batches   map[int64]domain.UploadBatch
	users     map[int64]domain.User
	sessions  map[string]domain.Session
	activity  []domain.ActivityLog
	failWrite error
}

func newMemStore() *memStore {
	return &memStore{
		articles: map[int64]*domain.Article{},
		websites: map[int64]*domain.Website{},
		batches:  map[int64]domain.UploadBatch{},
		users:    map[int64]domain.User{},
		sessions: map[string]domain.Session{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addWebsite(site domain.Website) domain.Website {
	m.mu.Lock()
	defer m.mu.Unlock()
	site.ID = m.id()
	if site.Status == "" {
		site.Status = domain.WebsiteActive
	}
	cp := site
	m.websites[site.ID] = &cp
	return site
}

func (m *memStore) addArticle(a domain.Article) domain.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	cp := a
	m.articles[a.ID] = &cp
	return a
}

func (m *memStore) article(id int64) domain.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.articles[id]
}

func (m *memStore) website(id int64) domain.Website {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.websites[id]
}

func (m *memStore) activityOf(kind domain.ActivityType) []domain.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActivityLog
	for _, e := range m.activity {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) GetArticle(_ context.Context, id int64) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ClaimForPublish(_ context.Context, id int64, staleBefore time.Time, maxAttempts int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return false, nil
	}
	claimable := a.Status == domain.StatusPending || a.Status == domain.StatusFailed ||
		(a.Status == domain.StatusPublishing && a.PublishStartedAt != nil && a.PublishStartedAt.Before(staleBefore))
	if !claimable || (maxAttempts > 0 && a.PublishAttempts >= maxAttempts) {
		return false, nil
	}
	now := time.Now().UTC()
	a.Status = domain.StatusPublishing
	a.PublishAttempts++
	a.PublishStartedAt = &now
	return true, nil
}

func (m *memStore) MarkPublished(_ context.Context, id int64, res domain.PublishSuccess) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	a := m.articles[id]
	if a == nil || a.Status != domain.StatusPublishing {
		return domain.ErrConflict
	}
	at := res.PublishedAt
	a.SpunTitle, a.SpunContent, a.LiveLink = &res.SpunTitle, &res.SpunContent, &res.LiveLink
	a.PublishedAt = &at
	a.Status = domain.StatusPublished
	a.ErrorLog = nil
	a.PublishStartedAt = nil
	return nil
}

func (m *memStore) MarkFailed(_ context.Context, id int64, res domain.PublishFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	a := m.articles[id]
	if a == nil || a.Status != domain.StatusPublishing {
		return domain.ErrConflict
	}
	a.SpunTitle, a.SpunContent, a.ErrorLog = &res.SpunTitle, &res.SpunContent, &res.ErrorLog
	a.Status = domain.StatusFailed
	a.PublishStartedAt = nil
	return nil
}

func (m *memStore) ListArticles(_ context.Context, ownerID int64) ([]domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Article
	for _, a := range m.articles {
		if a.BatchID != nil && m.batches[*a.BatchID].OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) ListPublished(_ context.Context, ownerID int64, limit int) ([]domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Article
	for _, a := range m.articles {
		if a.Status == domain.StatusPublished && a.WebsiteID != nil && m.websites[*a.WebsiteID] != nil && m.websites[*a.WebsiteID].OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CountByStatus(_ context.Context, ownerID int64) (map[domain.ArticleStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.ArticleStatus]int{}
	for _, a := range m.articles {
		if a.WebsiteID != nil && m.websites[*a.WebsiteID] != nil && m.websites[*a.WebsiteID].OwnerID == ownerID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (m *memStore) CreateBatch(_ context.Context, batch domain.UploadBatch, rows []domain.NewArticle) (domain.UploadBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return domain.UploadBatch{}, m.failWrite
	}
	batch.ID = m.id()
	m.batches[batch.ID] = batch
	for _, row := range rows {
		batchID := batch.ID
		a := &domain.Article{
			ID:              m.id(),
			OriginalTitle:   row.OriginalTitle,
			OriginalContent: row.OriginalContent,
			Keywords:        row.Keywords,
			WebsiteID:       row.WebsiteID,
			BatchID:         &batchID,
			Status:          domain.StatusPending,
		}
		m.articles[a.ID] = a
	}
	return batch, nil
}

func (m *memStore) CreateWebsite(_ context.Context, site domain.Website) (domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	site.ID = m.id()
	cp := site
	m.websites[site.ID] = &cp
	return site, nil
}

func (m *memStore) GetWebsite(_ context.Context, id int64) (*domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	site, ok := m.websites[id]
	if !ok {
		return nil, fmt.Errorf("website %d: %w", id, domain.ErrNotFound)
	}
	cp := *site
	return &cp, nil
}

func (m *memStore) ListWebsites(_ context.Context, ownerID int64) ([]domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Website
	for id := int64(1); id <= m.nextID; id++ {
		if site, ok := m.websites[id]; ok && site.OwnerID == ownerID {
			cp := *site
			cp.AppPassword = ""
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memStore) DeleteWebsite(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	site, ok := m.websites[id]
	if !ok || site.OwnerID != ownerID {
		return fmt.Errorf("website %d: %w", id, domain.ErrNotFound)
	}
	delete(m.websites, id)
	return nil
}

func (m *memStore) SetWebsiteStatus(_ context.Context, id int64, status domain.WebsiteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	site, ok := m.websites[id]
	if !ok {
		return domain.ErrNotFound
	}
	site.Status = status
	return nil
}

func (m *memStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	user.ID = m.id()
	m.users[user.ID] = user
	return user, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetUser(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) CreateSession(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return nil
}

func (m *memStore) GetSession(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memStore) AppendActivity(_ context.Context, entry domain.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.id()
	m.activity = append(m.activity, entry)
	return nil
}

func (m *memStore) RecentActivity(_ context.Context, userID int64, limit int) ([]domain.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActivityLog
	for i := len(m.activity) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.activity[i].UserID == userID {
			out = append(out, m.activity[i])
		}
	}
	return out, nil
}

// fakeWordPress records calls and replays scripted results.
type fakeWordPress struct {
	mu      sync.Mutex
	calls   []domain.Post
	creds   []domain.Credentials
	results []error
	link    string
	user    string
	userErr error
	// gate, when set, blocks CreatePost until closed.
	gate chan struct{}
	// onCreate runs after the post is accepted, before CreatePost returns.
	onCreate func()
}

func (f *fakeWordPress) CreatePost(ctx context.Context, creds domain.Credentials, post domain.Post) (domain.CreatedPost, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.CreatedPost{}, &domain.RemoteError{Message: ctx.Err().Error()}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, post)
	f.creds = append(f.creds, creds)
	var err error
	if len(f.results) > 0 {
		err, f.results = f.results[0], f.results[1:]
	}
	if err != nil {
		return domain.CreatedPost{}, err
	}
	if f.onCreate != nil {
		f.onCreate()
	}
	return domain.CreatedPost{ID: int64(len(f.calls)), Link: f.link}, nil
}

func (f *fakeWordPress) CurrentUser(_ context.Context, creds domain.Credentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, creds)
	return f.user, f.userErr
}

func (f *fakeWordPress) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// echoSpinner prefixes text so tests can see the spin ran.
type echoSpinner struct{}

func (echoSpinner) Spin(text string) string { return "spun:" + text }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

// fakeParser returns fixed rows regardless of input.
type fakeParser struct {
	rows []domain.SheetRow
	err  error
	got  string
}

func (p *fakeParser) Parse(_ context.Context, fileName string, _ []byte) ([]domain.SheetRow, error) {
	p.got = fileName
	return p.rows, p.err
}

type fakeDownloader struct {
	data []byte
	err  error
	got  string
}

func (d *fakeDownloader) Download(_ context.Context, rawURL string) ([]byte, error) {
	d.got = rawURL
	return d.data, d.err
}
