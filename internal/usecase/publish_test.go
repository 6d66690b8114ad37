package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"PBNPublisher/internal/domain"
)

const (
	ownerID    = int64(100)
	strangerID = int64(200)
)

type publishFixture struct {
	store    *memStore
	wp       *fakeWordPress
	notifier *recordingNotifier
	pub      *Publisher
	site     domain.Website
	article  domain.Article
}

func newPublishFixture(t *testing.T, maxAttempts int) *publishFixture {
	t.Helper()

	store := newMemStore()
	site := store.addWebsite(domain.Website{
		Name: "Blog A", URL: "https://a.com", Username: "editor", AppPassword: "secret", OwnerID: ownerID,
	})
	siteID := site.ID
	article := store.addArticle(domain.Article{
		OriginalTitle: "Fast wins", OriginalContent: "line1\n\nline2", Keywords: "a, b , ", WebsiteID: &siteID,
	})

	wp := &fakeWordPress{link: "https://a.com/fast-wins/"}
	notifier := &recordingNotifier{}
	pub := NewPublisher(PublisherDeps{
		Articles:    store,
		Websites:    store,
		Activity:    store,
		WordPress:   wp,
		Spinner:     echoSpinner{},
		Notifier:    notifier,
		MaxAttempts: maxAttempts,
	})
	return &publishFixture{store: store, wp: wp, notifier: notifier, pub: pub, site: site, article: article}
}

func TestPublishSuccess(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)

	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if !out.OK() || out.Link != fx.wp.link {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	got := fx.store.article(fx.article.ID)
	if got.Status != domain.StatusPublished || got.LiveLink == nil || got.PublishedAt == nil {
		t.Fatalf("article not published: %+v", got)
	}
	if *got.SpunTitle != "spun:Fast wins" || *got.SpunContent != "spun:line1\n\nline2" {
		t.Fatalf("spin results not stored: %q %q", *got.SpunTitle, *got.SpunContent)
	}

	post := fx.wp.calls[0]
	if post.Title != "spun:Fast wins" || post.Status != "publish" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if !strings.HasPrefix(post.Content, "<p><em>Keywords: a, b</em></p>") || !strings.Contains(post.Content, "<p>spun:line1</p>") {
		t.Fatalf("unexpected markup: %q", post.Content)
	}
	if creds := fx.wp.creds[0]; creds.URL != "https://a.com" || creds.AppPassword != "secret" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	logs := fx.store.activityOf(domain.ActivityPublish)
	if len(logs) != 1 || logs[0].Message != "Successfully published: spun:Fast wins to Blog A" {
		t.Fatalf("unexpected activity: %+v", logs)
	}
	if len(fx.notifier.messages) != 1 {
		t.Fatalf("expected one notification, got %v", fx.notifier.messages)
	}
}

func TestPublishTwiceIsRejectedWithoutRemoteCall(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)

	if out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID); !out.OK() {
		t.Fatalf("first publish failed: %+v", out)
	}
	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if out.Kind != OutcomeAlreadyPublished {
		t.Fatalf("expected already published, got %+v", out)
	}
	if n := fx.wp.callCount(); n != 1 {
		t.Fatalf("expected a single remote call, got %d", n)
	}
}

func TestPublishFailureThenRetry(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)
	fx.wp.results = []error{&domain.RemoteError{Status: 500, Message: "Database error"}}

	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if out.Kind != OutcomeRemoteFailure || out.Message != "Database error" {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	got := fx.store.article(fx.article.ID)
	if got.Status != domain.StatusFailed || got.LiveLink != nil || got.PublishedAt != nil {
		t.Fatalf("unexpected failed article: %+v", got)
	}
	if got.ErrorLog == nil || *got.ErrorLog != "Database error" {
		t.Fatalf("remote error not retained: %+v", got.ErrorLog)
	}
	if len(fx.store.activityOf(domain.ActivityPublishFailed)) != 1 {
		t.Fatalf("expected publish_failed activity")
	}
	if fx.store.website(fx.site.ID).Status != domain.WebsiteActive {
		t.Fatalf("server errors must not flip the website status")
	}

	out = fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if !out.OK() {
		t.Fatalf("retry failed: %+v", out)
	}
	got = fx.store.article(fx.article.ID)
	if got.Status != domain.StatusPublished || got.ErrorLog != nil || got.PublishAttempts != 2 {
		t.Fatalf("unexpected article after retry: %+v", got)
	}
}

func TestPublishGenericMessageWithoutRemoteText(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)
	fx.wp.results = []error{errors.New("boom")}

	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if out.Kind != OutcomeRemoteFailure || out.Message != genericRemoteFailure {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestPublishRejectsForeignWebsiteBeforeRemoteCall(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)

	out := fx.pub.Publish(context.Background(), strangerID, fx.article.ID)
	if out.Kind != OutcomeNotFound {
		t.Fatalf("expected not found, got %+v", out)
	}
	if fx.wp.callCount() != 0 {
		t.Fatalf("remote call issued for foreign article")
	}
	if got := fx.store.article(fx.article.ID); got.Status != domain.StatusPending || got.PublishAttempts != 0 {
		t.Fatalf("state changed on rejection: %+v", got)
	}
}

func TestPublishPreconditions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		setup func(fx *publishFixture) int64
		want  OutcomeKind
	}{
		{
			name:  "missing article",
			setup: func(fx *publishFixture) int64 { return 9999 },
			want:  OutcomeNotFound,
		},
		{
			name: "unmatched article",
			setup: func(fx *publishFixture) int64 {
				return fx.store.addArticle(domain.Article{OriginalTitle: "Orphan"}).ID
			},
			want: OutcomeNotFound,
		},
		{
			name: "inactive website",
			setup: func(fx *publishFixture) int64 {
				_ = fx.store.SetWebsiteStatus(context.Background(), fx.site.ID, domain.WebsiteInactive)
				return fx.article.ID
			},
			want: OutcomeWebsiteInactive,
		},
		{
			name: "attempts exhausted",
			setup: func(fx *publishFixture) int64 {
				siteID := fx.site.ID
				return fx.store.addArticle(domain.Article{
					OriginalTitle: "Tired", Status: domain.StatusFailed, PublishAttempts: 5, WebsiteID: &siteID,
				}).ID
			},
			want: OutcomeAttemptsExhausted,
		},
		{
			name: "claim held by another request",
			setup: func(fx *publishFixture) int64 {
				siteID := fx.site.ID
				started := time.Now().UTC()
				return fx.store.addArticle(domain.Article{
					OriginalTitle: "Busy", Status: domain.StatusPublishing, PublishAttempts: 1,
					PublishStartedAt: &started, WebsiteID: &siteID,
				}).ID
			},
			want: OutcomeInProgress,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fx := newPublishFixture(t, 5)
			id := tc.setup(fx)

			out := fx.pub.Publish(context.Background(), ownerID, id)
			if out.Kind != tc.want {
				t.Fatalf("expected %s, got %+v", tc.want, out)
			}
			if fx.wp.callCount() != 0 {
				t.Fatalf("remote call issued despite failed precondition")
			}
		})
	}
}

func TestPublishConcurrentRequestsPostOnce(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)
	fx.wp.gate = make(chan struct{})

	const callers = 6
	outcomes := make(chan PublishOutcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
		}()
	}

	// Every caller but the claim holder returns without touching the remote.
	for i := 0; i < callers-1; i++ {
		out := <-outcomes
		if out.Kind != OutcomeInProgress {
			t.Fatalf("expected in progress, got %+v", out)
		}
	}
	close(fx.wp.gate)
	wg.Wait()

	if out := <-outcomes; !out.OK() {
		t.Fatalf("claim holder failed: %+v", out)
	}
	if n := fx.wp.callCount(); n != 1 {
		t.Fatalf("expected one remote post, got %d", n)
	}
}

func TestPublishAuthFailureFlagsWebsite(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)
	fx.wp.results = []error{&domain.RemoteError{Status: 401, Message: "Sorry, you are not allowed to create posts as this user."}}

	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if out.Kind != OutcomeRemoteFailure {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if status := fx.store.website(fx.site.ID).Status; status != domain.WebsiteError {
		t.Fatalf("expected website error status, got %s", status)
	}

	if out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID); !out.OK() {
		t.Fatalf("retry failed: %+v", out)
	}
	if status := fx.store.website(fx.site.ID).Status; status != domain.WebsiteActive {
		t.Fatalf("expected website restored to active, got %s", status)
	}
}

func TestPublishAttemptCap(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 2)
	fx.wp.results = []error{
		&domain.RemoteError{Status: 500, Message: "one"},
		&domain.RemoteError{Status: 500, Message: "two"},
	}

	for i := 0; i < 2; i++ {
		if out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID); out.Kind != OutcomeRemoteFailure {
			t.Fatalf("attempt %d: unexpected outcome %+v", i, out)
		}
	}
	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if out.Kind != OutcomeAttemptsExhausted {
		t.Fatalf("expected exhausted, got %+v", out)
	}
	if n := fx.wp.callCount(); n != 2 {
		t.Fatalf("expected two remote calls, got %d", n)
	}
}

func TestPublishPersistenceErrorIsGeneric(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)
	fx.store.failWrite = errors.New("disk full")

	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if out.Kind != OutcomeInternal || out.Message != genericInternal {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestPublishNotifierErrorDoesNotChangeOutcome(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)
	fx.notifier.err = errors.New("telegram down")

	if out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID); !out.OK() {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestPreviewLeavesArticleUntouched(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)

	post, err := fx.pub.Preview(context.Background(), ownerID, fx.article.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if post.Title != "spun:Fast wins" || !strings.Contains(post.Content, "<p>spun:line1</p>") {
		t.Fatalf("unexpected preview: %+v", post)
	}
	if got := fx.store.article(fx.article.ID); got.Status != domain.StatusPending || got.PublishAttempts != 0 {
		t.Fatalf("preview changed article: %+v", got)
	}
	if fx.wp.callCount() != 0 {
		t.Fatal("preview must not call WordPress")
	}

	if _, err := fx.pub.Preview(context.Background(), strangerID, fx.article.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign article, got %v", err)
	}
}

func TestPublishOutcomeErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind OutcomeKind
		want error
	}{
		{OutcomeNotFound, domain.ErrNotFound},
		{OutcomeAlreadyPublished, domain.ErrAlreadyPublished},
		{OutcomeInProgress, domain.ErrPublishInProgress},
		{OutcomeWebsiteInactive, domain.ErrWebsiteInactive},
		{OutcomeAttemptsExhausted, domain.ErrAttemptsExhausted},
	}
	for _, tc := range tests {
		err := PublishOutcome{Kind: tc.kind, Message: "msg"}.Err()
		if !errors.Is(err, tc.want) || !strings.HasPrefix(err.Error(), "msg") {
			t.Fatalf("%s: Err() = %v, want %v", tc.kind, err, tc.want)
		}
	}

	if err := (PublishOutcome{Kind: OutcomePublished, Link: "x"}).Err(); err != nil {
		t.Fatalf("published outcome Err() = %v", err)
	}
	var remote *domain.RemoteError
	if err := (PublishOutcome{Kind: OutcomeRemoteFailure, Message: "boom"}).Err(); !errors.As(err, &remote) || remote.Message != "boom" {
		t.Fatalf("remote outcome Err() = %v", err)
	}
}

func TestPublishTwiceReportsAlreadyPublishedSentinel(t *testing.T) {
	t.Parallel()
	fx := newPublishFixture(t, 5)

	_ = fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	out := fx.pub.Publish(context.Background(), ownerID, fx.article.ID)
	if !errors.Is(out.Err(), domain.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", out.Err())
	}
}
